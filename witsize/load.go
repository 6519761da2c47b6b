package witsize

import (
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/nopad/errors"
)

// Load reads a resolved WIT package as printed by
// `wasm-tools component wit --json`. An empty path or "-" reads stdin.
func Load(path string) (*wit.Resolve, error) {
	res, err := wit.LoadJSON(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseWIT, errors.KindInvalidInput, err, "load WIT JSON "+path)
	}
	return res, nil
}

// Records returns the named records and tuples of res in declaration order.
func Records(res *wit.Resolve) []*wit.TypeDef {
	var out []*wit.TypeDef
	for _, td := range res.TypeDefs {
		if td.Name == nil {
			continue
		}
		switch td.Kind.(type) {
		case *wit.Record, *wit.Tuple:
			out = append(out, td)
		}
	}
	return out
}

// CalculateAll sizes every named record and tuple of res. Failures are
// collected; the returned infos cover the records that succeeded.
func (c *Calculator) CalculateAll(res *wit.Resolve) ([]Info, error) {
	var diags errors.Diagnostics
	var infos []Info
	for _, td := range Records(res) {
		info, err := c.Calculate(td)
		if err != nil {
			Logger().Debug("record rejected", zap.String("type", *td.Name), zap.Error(err))
			diags.Add(err)
			continue
		}
		infos = append(infos, info)
	}
	return infos, diags.Err()
}
