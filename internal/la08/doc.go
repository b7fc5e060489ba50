// Package la08 reads the low-temperature LA08 opacity tables and selects the
// table matching a requested composition.
//
// The bulk file is a flat numeric matrix: each block of RowsPerTable rows is
// one table, column 2 holds logT and the following columns hold log opacity
// on a fixed logR axis that the file itself does not carry. A companion sets
// file lists one composition per table.
package la08
