// Package stats provides per-dimension running statistics (ScalarStats),
// row-scaling transforms used for feature normalization (Scale/Upscale),
// and the small numeric helpers Percentile and IntDiv. gonum.org/v1/gonum/stat backs the quantile interpolation.
package stats
