// Package schema declares the expected kinds of agent state entries.
//
// A schema maps state keys to types. Types name value kinds (int, float,
// bool, text, duration, id), "number" accepts int or float, and a trailing
// "?" makes an entry optional (absent or nil).
//
// Basic usage:
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "Energy":   "int",
//	    "Mood":     "text?",
//	    "Cooldown": "duration",
//	})
//
//	if err := schema.Validate(s, state); err != nil {
//	    // Handle validation errors
//	}
//
// Keys absent from the schema are not checked. Task trees declare their
// schema next to the initial state:
//
//	schema:
//	  Energy: int
//	  CropHealth: number
//	state:
//	  Energy: 100
//	  CropHealth: 0
package schema
