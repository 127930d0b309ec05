package cli

import "github.com/m-mizutani/fireconf"

func GetIndexConfig(prefix string) *fireconf.Config {
	return getIndexConfig(prefix)
}
