package cfg

type Cfg struct {
	// Application configuration
	Port            string
	DataDir         string
	WorkerCount     int
	FetchTimeout    int
	BridgeURL       string
	RefreshInterval int
	RetentionDays   int
	SeedFile        string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
