package inventory

import "fmt"

// CostMethod es la política de costeo para el consumo de lotes. Se pasa como
// parámetro explícito a cada operación en lugar de leerse de estado global,
// para que la política sea un insumo visible y testeable por operación.
type CostMethod string

const (
	CostMethodFIFO     CostMethod = "fifo"     // lotes más antiguos primero
	CostMethodLIFO     CostMethod = "lifo"     // lotes más recientes primero
	CostMethodAverage  CostMethod = "average"  // costo promedio ponderado del artículo
	CostMethodSpecific CostMethod = "specific" // lote indicado por el llamador
)

// ParseCostMethod valida y normaliza una política de costeo desde configuración.
func ParseCostMethod(s string) (CostMethod, error) {
	switch CostMethod(s) {
	case CostMethodFIFO, CostMethodLIFO, CostMethodAverage, CostMethodSpecific:
		return CostMethod(s), nil
	case "":
		return CostMethodAverage, nil
	default:
		return "", fmt.Errorf("política de costeo desconocida: %q", s)
	}
}
