package transmit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Output formats understood by Encode
const (
	FormatRaw   = "raw"   // carrier and signed microsecond timings on one line
	FormatJSON  = "json"  // one JSON envelope per line
	FormatMode2 = "mode2" // LIRC mode2 pulse/space lines
)

// Formats lists the supported output formats.
var Formats = []string{FormatRaw, FormatJSON, FormatMode2}

// Encode renders env in the given format. The result always ends in a newline.
func Encode(format string, env Envelope) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatRaw, "":
		buf.WriteString(strconv.Itoa(env.CarrierHz))
		buf.WriteByte(':')
		for i, v := range env.Raw {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Itoa(int(v)))
		}
		buf.WriteByte('\n')

	case FormatJSON:
		data, err := json.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal envelope: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')

	case FormatMode2:
		fmt.Fprintf(&buf, "carrier %d\n", env.CarrierHz)
		for _, v := range env.Raw {
			if v >= 0 {
				fmt.Fprintf(&buf, "pulse %d\n", v)
			} else {
				fmt.Fprintf(&buf, "space %d\n", -v)
			}
		}

	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	return buf.Bytes(), nil
}
