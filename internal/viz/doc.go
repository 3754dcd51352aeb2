// Package viz draws terminal previews of a settled bowl.
//
// [Canvas] is a Braille dot grid: each cell holds 2x4 sub-pixels, so a
// 64-column preview resolves 128 dots across. [Preview] rasterizes circles
// onto it and the lipgloss styles color the surrounding report.
package viz
