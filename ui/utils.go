package ui

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	"screenviz/internal/errors"
)

// maxPortProbes bounds the free-port search
const maxPortProbes = 100

// FindFreePort returns the first port at or above start that host can listen on
func FindFreePort(host string, start int) (int, error) {
	for port := start; port < start+maxPortProbes && port <= 65535; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			continue
		}
		l.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in [%d, %d)", start, start+maxPortProbes)
}

// httpStatus maps application error codes onto response statuses
func httpStatus(err error) int {
	switch {
	case errors.HasCode(err, errors.CodeNotFound):
		return http.StatusNotFound
	case errors.HasCode(err, errors.CodeInvalidInput),
		errors.HasCode(err, errors.CodeValidationError),
		errors.HasCode(err, errors.CodeThresholdConfig),
		errors.HasCode(err, errors.CodeMissingColumn):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseFloatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("invalid number %q", raw))
	}
	return v, nil
}

func parseBoolParam(raw string, def bool) (bool, error) {
	switch raw {
	case "":
		return def, nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.InvalidInput(fmt.Sprintf("invalid boolean %q", raw))
	}
	return v, nil
}
