package domain

import (
	"context"
	"fmt"
)

// Sensor refreshes one state entry from the outside world.
type Sensor struct {
	Key  string
	Read func(ctx context.Context) (Value, error)
}

// Sense invokes the sensor's producer.
func (s Sensor) Sense(ctx context.Context) (Value, error) {
	if s.Read == nil {
		return Nil(), fmt.Errorf("sensor %q has no producer", s.Key)
	}
	v, err := s.Read(ctx)
	if err != nil {
		return Nil(), fmt.Errorf("sensor %q: %w", s.Key, err)
	}
	return v, nil
}
