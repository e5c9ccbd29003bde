package comics

import "strings"

// PlaceholderCover is shown whenever the remote entry has no usable image.
const PlaceholderCover = "https://via.placeholder.com/300x450?text=Comic+Cover"

// Slugify converts a comic title into its route identity: lowercase, every
// maximal run of non-alphanumeric characters collapsed to a single hyphen,
// edge hyphens trimmed. A title with no alphanumerics slugs to "".
//
// No uniqueness is enforced; two titles that normalize identically collide.
// The normalized link, not the slug, is what fetches key on.
func Slugify(title string) string {
	title = strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(title))

	prevHyphen := false
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevHyphen = false
			continue
		}
		if !prevHyphen {
			b.WriteByte('-')
			prevHyphen = true
		}
	}

	return strings.Trim(b.String(), "-")
}

// NormalizeLink rewrites the remote API's path prefixes into the canonical
// link suffix used to re-query detail and chapter endpoints. Unknown input
// passes through unchanged.
func NormalizeLink(link string) string {
	link = strings.Replace(link, "/manga/", "/", 1)
	link = strings.Replace(link, "/plus/", "/", 1)
	link = strings.Replace(link, "/detail-komik/", "", 1)
	return link
}

// Blocked reports whether a catalog entry is junk the listings must drop:
// app-download placements that the remote mixes into its lists.
func Blocked(title, chapter string) bool {
	return strings.Contains(strings.ToLower(title), "apk") ||
		strings.Contains(strings.ToLower(chapter), "download")
}

// fixImage substitutes the placeholder for absent covers and for the
// remote's lazy-loading stub.
func fixImage(img string) string {
	if img == "" || strings.Contains(img, "lazy.jpg") {
		return PlaceholderCover
	}
	return img
}
