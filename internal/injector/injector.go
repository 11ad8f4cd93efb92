//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"
)

// InitializeApp builds the whole service from the environment.
func InitializeApp() (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
