package core

const (
	// PayloadSizeLimitBytes approximates the maximum payload for a ConfigMap or Secret.
	PayloadSizeLimitBytes = 1048576 // 1MiB
	// PayloadSizeWarnThresholdBytes raises a warning when above ~90%% of the limit.
	PayloadSizeWarnThresholdBytes = PayloadSizeLimitBytes * 9 / 10
)

// SizeCheckResult captures the outcome of validating a key-value payload size.
type SizeCheckResult struct {
	Bytes int
	Warn  bool
	Block bool
}

// CheckPayloadSize computes the serialized size of data to guard against large payloads.
func CheckPayloadSize(data map[string]string) SizeCheckResult {
	total := 0
	for k, v := range data {
		total += len(k) + len(v)
	}
	res := SizeCheckResult{Bytes: total}
	if total > PayloadSizeLimitBytes {
		res.Block = true
	} else if total > PayloadSizeWarnThresholdBytes {
		res.Warn = true
	}
	return res
}
