package crawler

import (
	"crypto/md5"
	"encoding/hex"
)

// ItemID derives the stable headline id for a feed item. The same
// (feed id, guid) pair always yields the same id, across runs and restarts,
// so re-polling an item resolves to the record created for it originally.
func ItemID(feedID string, guid string) string {
	sum := md5.Sum([]byte(feedID + "@" + guid))
	return hex.EncodeToString(sum[:])
}

// TitleHash computes the fixed-size fingerprint of a title. Stored next to
// each headline so unchanged items can be skipped without comparing full
// title text on every poll.
func TitleHash(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])
}
