package utils

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag builds a weak validator from a document's identity and last
// modification time. Variants are values derived on read, such as a
// classification that moves with the clock.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time, variants ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `W/"%s-%d`, id.Hex(), updatedAt.UnixNano())
	for _, v := range variants {
		b.WriteString("-")
		b.WriteString(v)
	}
	b.WriteString(`"`)
	return b.String()
}

// GenerateListETag folds counts into the tag, so a deletion or a change in
// how the entries are grouped invalidates it.
func GenerateListETag(latestID primitive.ObjectID, latestUpdate time.Time, counts ...int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `W/"%s-%d`, latestID.Hex(), latestUpdate.UnixNano())
	for _, n := range counts {
		fmt.Fprintf(&b, "-%d", n)
	}
	b.WriteString(`"`)
	return b.String()
}
