// Package tablefile writes and reads the spliced opacity table consumed by
// the stellar model, and interpolates values from it.
//
// The file starts with two header lines (a right-aligned "logR" label and a
// centred "logT" label). Every following line is one grid row: row 0 carries
// the logR axis with a zero in column 0, later rows start with logT. Each
// cell is rendered with an explicit sign and three decimals, centred in a
// seven character field and followed by a single space.
package tablefile
