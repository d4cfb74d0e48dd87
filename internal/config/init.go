package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# docsync configuration
github:
  owner: dr5hn
  repo: countries-states-cities-database
  token_env: GITHUB_TOKEN

readme:
  url: https://raw.githubusercontent.com/dr5hn/countries-states-cities-database/master/README.md

docs:
  overview_path: docs/overview.mdx
  changelog_path: docs/changelog.mdx
  backup: true

daemon:
  interval: 6h
  listen: ":9465"

# Uncomment to publish sync events to NATS
#notify:
#  url: nats://localhost:4222
#  subject: docsync.events

state:
  path: docsync.db

git:
  author_name: docsync
  author_email: docsync@countrystatecity.in
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	return os.WriteFile(configPath, []byte(exampleConfig), 0o644)
}
