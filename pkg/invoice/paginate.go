package invoice

// Offsets returns the top row of each page when an image of imageHeight px
// is cut into pages of pageHeight px. The first page starts at 0 and a new
// page is started while any height remains, so there is never a blank
// trailing page.
func Offsets(imageHeight, pageHeight int) []int {
	if imageHeight <= 0 || pageHeight <= 0 {
		return nil
	}
	offsets := []int{0}
	remaining := imageHeight - pageHeight
	for remaining > 0 {
		// The image is drawn at remaining - imageHeight on the next page,
		// i.e. shifted up by the height already printed.
		offsets = append(offsets, imageHeight-remaining)
		remaining -= pageHeight
	}
	return offsets
}
