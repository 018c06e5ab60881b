package app

import (
	"github.com/vk/componentry/internal/registry"
	"github.com/vk/componentry/modules/bridge"
	"github.com/vk/componentry/modules/console"
	"github.com/vk/componentry/modules/journal"
)

// defaultModules are compiled into the binary and registered when NewApp
// receives no modules. The core component is always registered first and
// is not part of this list.
func defaultModules() []registry.Module {
	return []registry.Module{
		&console.Module{},
		&journal.Module{},
		&bridge.Module{},
	}
}
