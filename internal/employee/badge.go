package employee

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const barcodePrefix = "EMP"

// Badge carries the texts printed on an employee badge. Rendering the QR
// and barcode images is left to clients.
type Badge struct {
	EmployeeID int64  `json:"employeeId"`
	Name       string `json:"name"`
	QRPayload  string `json:"qrPayload"`
	Barcode    string `json:"barcode"`
}

type qrPayload struct {
	EmployeeID int64 `json:"employeeId"`
}

func NewBadge(e *Employee) Badge {
	payload, _ := json.Marshal(qrPayload{EmployeeID: e.ID})
	return Badge{
		EmployeeID: e.ID,
		Name:       e.Name,
		QRPayload:  string(payload),
		Barcode:    fmt.Sprintf("%s%04d", barcodePrefix, e.ID),
	}
}

// ParseBadgeCode reads an employee id from a scanned QR payload
// ({"employeeId":N}) or barcode text (EMP0005).
func ParseBadgeCode(code string) (int64, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, false
	}

	if strings.HasPrefix(code, "{") {
		var p qrPayload
		if err := json.Unmarshal([]byte(code), &p); err != nil || p.EmployeeID <= 0 {
			return 0, false
		}
		return p.EmployeeID, true
	}

	if len(code) > len(barcodePrefix) && strings.EqualFold(code[:len(barcodePrefix)], barcodePrefix) {
		id, err := strconv.ParseInt(code[len(barcodePrefix):], 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	}

	return 0, false
}
