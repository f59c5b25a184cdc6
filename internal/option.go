package internal

// Option is a functional option applied when the Laguz server boots.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig overrides the configuration Run and RunMCP start with.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
