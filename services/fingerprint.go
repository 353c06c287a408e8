package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"smart-price/models"
)

// DatasetFingerprint hashes the cleaned rows in order. Two datasets with the
// same fingerprint produce the same category maps and the same fit.
func DatasetFingerprint(listings []*models.Listing) string {
	h := sha256.New()
	var b strings.Builder
	for _, l := range listings {
		b.Reset()
		labels := l.Labels()
		b.WriteString(strings.Join(labels[:], "\x1f"))
		for _, v := range l.Numeric() {
			b.WriteByte('\x1f')
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteByte('\x1f')
		if l.HasPrice {
			b.WriteString(strconv.FormatFloat(l.SellingPrice, 'g', -1, 64))
		}
		b.WriteByte('\n')
		h.Write([]byte(b.String()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CheckStaleness compares the priced rows of the live dataset with the rows
// the artifact was trained on. It only reports; the artifact's maps stay
// authoritative.
func CheckStaleness(a *models.Artifact, live []*models.Listing) (stale bool, liveFingerprint string) {
	priced := make([]*models.Listing, 0, len(live))
	for _, l := range live {
		if l.HasPrice {
			priced = append(priced, l)
		}
	}
	liveFingerprint = DatasetFingerprint(priced)
	if a.DatasetFingerprint == "" {
		return false, liveFingerprint
	}
	return a.DatasetFingerprint != liveFingerprint, liveFingerprint
}
