package util

// Histogram buckets shared by the prometheus metrics of all packages. Durations are in
// seconds, as prometheus expects.

// MetricsBucketsMilliSeconds covers 1ms to 4s, for single requests and validations.
var MetricsBucketsMilliSeconds = []float64{
	1e-3, 2e-3, 4e-3, 16e-3, 32e-3, 64e-3, 128e-3, 256e-3, 512e-3, 1024e-3, 2048e-3, 4096e-3,
}

// MetricsBucketsMilliLongSeconds covers 64ms to 131s, for rollbacks over many blocks.
var MetricsBucketsMilliLongSeconds = []float64{
	64e-3, 128e-3, 256e-3, 512e-3, 1024e-3, 2048e-3, 4096e-3, 8192e-3, 16384e-3, 32768e-3, 65536e-3, 131072e-3,
}

// MetricsBucketsCount covers 1 to 16384 items, e.g. transactions in a block or records
// touched by a rollback.
var MetricsBucketsCount = []float64{
	1, 2, 4, 8, 16, 32, 64, 128, 256, 1024, 4096, 16384,
}
