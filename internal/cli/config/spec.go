package config

// DefaultServer is the management endpoint used when nothing else is set.
const DefaultServer = "http://127.0.0.1:9990"

// CLIConfig is the on-disk configuration for kernel-cli.
type CLIConfig struct {
	Output      string             `yaml:"output,omitempty"`
	Current     string             `yaml:"current,omitempty"`
	Controllers map[string]Profile `yaml:"controllers,omitempty"`
}

// Profile describes how to reach one management controller.
type Profile struct {
	Server   string `yaml:"server"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	CAFile   string `yaml:"ca_file,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// Default returns the built-in configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Output:      "table",
		Controllers: make(map[string]Profile),
	}
}

// Active returns the profile selected by Current, or a profile pointing at
// DefaultServer when none is selected.
func (c *CLIConfig) Active() Profile {
	if p, ok := c.Controllers[c.Current]; ok {
		if p.Server == "" {
			p.Server = DefaultServer
		}
		return p
	}
	return Profile{Server: DefaultServer}
}

// Merge overlays the non-zero fields of o onto p.
func (p Profile) Merge(o Profile) Profile {
	if o.Server != "" {
		p.Server = o.Server
	}
	if o.User != "" {
		p.User = o.User
	}
	if o.Password != "" {
		p.Password = o.Password
	}
	if o.CAFile != "" {
		p.CAFile = o.CAFile
	}
	if o.Insecure {
		p.Insecure = true
	}
	return p
}
