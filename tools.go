//go:build tools

package tools

// Mocks in pkg/port/mocks are generated with mockery; see .mockery.yaml and
// the go:generate directive in pkg/port.
import (
	_ "github.com/vektra/mockery/v2"
)
