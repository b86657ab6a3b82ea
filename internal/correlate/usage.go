package correlate

import "encoding/json"

// textComponent is one element of a tellraw message.
type textComponent struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

// UsageError is the tellraw message shown when function is run by anything
// other than an entity tagged rootTag.
func UsageError(function, rootTag string) string {
	msg := []any{
		"",
		textComponent{Text: "AJ", Color: "green"},
		textComponent{Text: " → ", Color: "light_purple"},
		textComponent{Text: "Error ←", Color: "red"},
		"\n",
		textComponent{Text: function, Color: "blue"},
		" ",
		textComponent{Text: "must be executed as ", Color: "gray"},
		textComponent{Text: rootTag, Color: "light_purple"},
	}
	b, err := json.Marshal(msg)
	if err != nil {
		// Strings and fixed structs always marshal.
		panic(err)
	}
	return string(b)
}
