package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var codeAdjectives = []string{
	"brave", "calm", "cool", "cozy", "crisp", "bold", "bright", "clean", "clear", "daring",
	"eager", "easy", "fair", "fancy", "fast", "fierce", "fine", "fresh", "fun", "gentle",
	"glad", "golden", "grand", "great", "happy", "hardy", "hearty", "jolly", "keen", "kind",
	"lively", "lucky", "merry", "mighty", "neat", "nice", "noble", "peppy", "perky", "plucky",
	"proud", "quick", "quiet", "rare", "ready", "rich", "rosy", "royal", "sassy", "sharp",
	"shiny", "silly", "slick", "smart", "snappy", "snowy", "soft", "solid", "spicy", "steady",
	"stout", "sunny", "super", "sweet", "swift", "tall", "tidy", "tiny", "tough", "tricky",
	"true", "vivid", "warm", "wee", "wild", "wise", "witty", "zany", "zippy", "zesty",
	"amber", "azure", "coral", "crimson", "cyan", "ebony", "ivory", "jade", "lilac", "maple",
	"misty", "olive", "pearl", "plum", "ruby", "rusty", "sage", "sandy", "teal", "velvet",
}

var codeNouns = []string{
	"falcon", "dolphin", "tiger", "eagle", "panda", "wolf", "fox", "bear", "hawk", "owl",
	"lynx", "otter", "raven", "swan", "crane", "heron", "finch", "robin", "wren", "lark",
	"maple", "cedar", "birch", "pine", "oak", "willow", "ivy", "fern", "moss", "sage",
	"river", "creek", "brook", "lake", "pond", "cliff", "ridge", "peak", "vale", "grove",
	"flame", "spark", "storm", "frost", "blaze", "ember", "cloud", "star", "moon", "sun",
	"coral", "pearl", "shell", "reef", "wave", "stone", "flint", "jade", "opal", "ruby",
	"arrow", "blade", "crown", "drum", "forge", "harp", "lance", "mace", "pike", "shield",
	"anchor", "beacon", "castle", "dune", "fort", "gate", "haven", "isle", "knoll", "tower",
	"cider", "cocoa", "honey", "mango", "mint", "olive", "peach", "plum", "spice", "thyme",
	"badge", "bell", "charm", "crest", "coin", "gem", "key", "knot", "ring", "seal",
}

// GenerateGroupCode returns a human-shareable join code like "sunny-otter-42".
// Codes are not secrets in the cryptographic sense, but they are generated
// with crypto/rand so collisions stay uniformly unlikely.
func GenerateGroupCode() (string, error) {
	adj, err := pickWord(codeAdjectives)
	if err != nil {
		return "", err
	}
	noun, err := pickWord(codeNouns)
	if err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(90))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%d", adj, noun, n.Int64()+10), nil
}

// GenerateVerificationCode returns a 3-digit code in [100, 999].
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100), nil
}

func pickWord(words []string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return "", err
	}
	return words[n.Int64()], nil
}
