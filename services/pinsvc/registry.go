// services/pinsvc/registry.go
package pinsvc

import (
	"fmt"
	"sync"

	"tinygo.org/x/drivers"

	"pinstate-go/pins"
)

// I2CFactory injects configured I²C instances by id, for devices that latch
// their state out to a port expander.
type I2CFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// BuildInput is passed to a device builder.
type BuildInput struct {
	Matrix     *pins.Matrix
	Buses      I2CFactory // may be nil when no expander hardware exists
	DeviceID   string
	Type       string
	ParamsJSON any
}

// Device is a constructed device bound to cells of the service's matrix.
type Device interface {
	ID() string
	Control(method string, payload any) (result any, err error)
}

// Builder creates a device from config and the live matrix.
type Builder interface {
	Build(in BuildInput) (Device, error)
}

var (
	mu       sync.RWMutex
	builders = map[string]Builder{}
)

func RegisterBuilder(deviceType string, b Builder) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := builders[deviceType]; exists {
		panic(fmt.Sprintf("device builder already registered for type %q", deviceType))
	}
	builders[deviceType] = b
}

func Lookup(deviceType string) (Builder, bool) {
	mu.RLock()
	defer mu.RUnlock()
	b, ok := builders[deviceType]
	return b, ok
}
