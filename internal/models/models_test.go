package models

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupModelsDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(&Group{}, &Member{}, &PendingVerification{}); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}
	return db
}

func TestBaseModelAssignsID(t *testing.T) {
	db := setupModelsDB(t)

	group := &Group{Name: "Trip", Code: "calm-otter-42", Currency: "€"}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed creating group: %v", err)
	}
	if group.ID == uuid.Nil {
		t.Fatal("expected BeforeCreate to assign an id")
	}
	if group.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestBaseModelKeepsExplicitID(t *testing.T) {
	db := setupModelsDB(t)

	explicit := uuid.New()
	group := &Group{Name: "Trip", Code: "warm-finch-77", Currency: "€"}
	group.ID = explicit
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed creating group: %v", err)
	}
	if group.ID != explicit {
		t.Fatalf("expected explicit id to survive, got %s", group.ID)
	}
}

func TestIsSettlement(t *testing.T) {
	settlement := Expense{Description: SettlementPrefix + " Bob → Alice"}
	if !settlement.IsSettlement() {
		t.Fatal("prefixed description must be a settlement")
	}

	regular := Expense{Description: "Groceries"}
	if regular.IsSettlement() {
		t.Fatal("plain description must not be a settlement")
	}

	if IsSettlementDescription("prefix " + SettlementPrefix) {
		t.Fatal("the marker must appear as a prefix, not anywhere")
	}
}

func TestPendingVerificationDefaults(t *testing.T) {
	db := setupModelsDB(t)

	group := &Group{Name: "Trip", Code: "late-raven-19", Currency: "€"}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed creating group: %v", err)
	}
	member := &Member{GroupID: group.ID, Name: "Alice"}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed creating member: %v", err)
	}

	pending := &PendingVerification{
		GroupID:  group.ID,
		MemberID: member.ID,
		Code:     "123",
		Status:   VerificationPending,
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("failed creating pending verification: %v", err)
	}

	var loaded PendingVerification
	if err := db.First(&loaded, "id = ?", pending.ID).Error; err != nil {
		t.Fatalf("failed loading pending verification: %v", err)
	}
	if loaded.Status != VerificationPending {
		t.Fatalf("expected pending status, got %s", loaded.Status)
	}
	if loaded.ApprovedByID != nil {
		t.Fatal("a fresh verification must not have an approver")
	}
}
