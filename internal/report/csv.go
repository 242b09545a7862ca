package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes one IP,Port,Service row per open port, with a header.
func WriteCSV(hosts []Host, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"IP", "Port", "Service"}); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	for _, h := range hosts {
		for _, p := range h.Ports {
			if err := cw.Write([]string{h.IP, strconv.Itoa(p.Number), p.Service}); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
