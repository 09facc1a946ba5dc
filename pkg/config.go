package merger

type Configuration struct {
	Verbosity              int          `json:"verbosity"`
	RunNumber              int          `json:"run_number"`
	ChunkSize              int          `json:"chunk_size"`
	Fraction               int          `json:"fraction"`
	Error                  float64      `json:"error"`
	NBadEvents             int          `json:"n_bad_events"`
	NGoodEvents            int          `json:"n_good_events"`
	CorrelationSearchRange int          `json:"correlation_search_range"`
	GoodEventsSearchRange  int          `json:"good_events_search_range"`
	EuclideanDistance      bool         `json:"euclidean_distance"`
	StartEventNumber       *int64       `json:"start_event_number"`
	StopEventNumber        *int64       `json:"stop_event_number"`
	PixelSize              [][2]float64 `json:"pixel_size"`
	HitFiles               []string     `json:"hit_files"`
	ClusterFiles           []string     `json:"cluster_files"`
	FileOut                string       `json:"file_out"`
	NoDB                   bool         `json:"no_db"`
	Host                   string       `json:"host"`
	User                   string       `json:"user"`
	Passwd                 string       `json:"pass"`
	DBName                 string       `json:"dbname"`
	CompressionLevel       int          `json:"compression_level"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}
