package handlers

import (
	"strings"

	"github.com/remontpro/frontdesk/internal/backend"
)

const genericErrorMessage = "Ошибка запроса"

// errorMessage turns any backend failure into one user-facing line.
// Transport failures get the generic message; rejected requests surface the
// backend's message, with validation details translated field by field where
// a label mapping exists.
func errorMessage(err error) string {
	ae := backend.AsAPIError(err)
	if ae == nil {
		return genericErrorMessage
	}
	if len(ae.Details) > 0 {
		var parts []string
		for _, d := range ae.Details {
			field := d.Field()
			if label, ok := fieldLabels[field]; ok {
				field = label
			}
			switch {
			case field != "" && d.Msg != "":
				parts = append(parts, field+": "+d.Msg)
			case d.Msg != "":
				parts = append(parts, d.Msg)
			}
		}
		if joined := strings.Join(parts, "; "); joined != "" {
			return joined
		}
	}
	if ae.Message != "" {
		return ae.Message
	}
	return genericErrorMessage
}
