// Package opal reads the high-temperature OPAL opacity file.
//
// The file concatenates fixed-layout table blocks. Each block starts with a
// header line naming the composition ("X=0.7000 Y=0.2800 Z=0.0200"), a logR
// header a few lines below it, and one line per logT row. Some rows in the
// published tables are shorter than the logR header; Read pads them with
// zeros and reports how many cells it invented.
package opal
