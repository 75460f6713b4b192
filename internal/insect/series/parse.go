package series

import "fmt"

// ParseStrategy maps a config string onto a Strategy. Unknown names are
// a load-time error, never a silent no-op.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "zscore", "":
		return StrategyZScore, nil
	case "iqr":
		return StrategyIQR, nil
	case "density":
		return StrategyDensity, nil
	default:
		return 0, fmt.Errorf("unknown outlier strategy %q (want zscore, iqr or density)", s)
	}
}

// ParsePolicy maps a config string onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "interpolate", "":
		return PolicyInterpolate, nil
	case "remove":
		return PolicyRemove, nil
	case "clip":
		return PolicyClip, nil
	default:
		return 0, fmt.Errorf("unknown outlier policy %q (want interpolate, remove or clip)", s)
	}
}

// ParseScaler maps a config string onto a ScalerKind.
func ParseScaler(s string) (ScalerKind, error) {
	switch s {
	case "none", "":
		return ScalerNone, nil
	case "minmax":
		return ScalerMinMax, nil
	case "standard":
		return ScalerStandard, nil
	case "robust":
		return ScalerRobust, nil
	default:
		return 0, fmt.Errorf("unknown scaler %q (want none, minmax, standard or robust)", s)
	}
}
