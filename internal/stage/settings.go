package stage

// Settings are the component keys the engine itself interprets. Concrete
// components embed this struct in their own typed settings so the shared
// keys decode alongside component-specific ones.
type Settings struct {
	OutputDir               string `toml:"output_dir"`
	Overwrite               bool   `toml:"overwrite"`
	AddSegmentMetadata      *bool  `toml:"add_segment_metadata"`
	PerformanceMeasurement  bool   `toml:"performance_measurement"`
	SavePayload             bool   `toml:"save_payload"`
	SavePayloadPeriodicity  int    `toml:"save_payload_periodicity"`
	IntermediatePayloadPath string `toml:"intermediate_payload_path"`
	LogEachXRecords         int    `toml:"log_each_x_records"`
	SegmentNameSeparator    string `toml:"segment_name_separator"`

	// RecordsCount is computed per Process call, never user-set.
	RecordsCount int `toml:"-"`
}

// SegmentMetadataEnabled defaults to true when the key is absent.
func (s Settings) SegmentMetadataEnabled() bool {
	if s.AddSegmentMetadata == nil {
		return true
	}
	return *s.AddSegmentMetadata
}

// Separator returns the segment-name separator, defaulting to "_".
func (s Settings) Separator() string {
	if s.SegmentNameSeparator == "" {
		return "_"
	}
	return s.SegmentNameSeparator
}

// LogEvery returns the latent-logging interval, defaulting to 10.
func (s Settings) LogEvery() int {
	if s.LogEachXRecords <= 0 {
		return 10
	}
	return s.LogEachXRecords
}
