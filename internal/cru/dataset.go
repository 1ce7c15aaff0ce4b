package cru

import (
	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/pkg/errors"
)

// Dataset is a CRU TS gridded time series of monthly mean temperatures, as
// published at https://crudata.uea.ac.uk/cru/data/hrg/. The tmp variable is
// dimensioned [time, lat, lon] and uses a fill value for cells with no
// observations (open ocean, mostly).
type Dataset struct {
	nc     api.Group
	lat    []float32
	lon    []float32
	months int
	tmp    api.VarGetter
	fill   float32
}

// Open opens a CRU TS temperature file and validates its layout.
func Open(filePath string) (*Dataset, error) {
	nc, err := netcdf.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, filePath)
	}
	ok := false
	defer func() {
		if !ok {
			nc.Close()
		}
	}()

	d := &Dataset{nc: nc}
	d.lat, err = axisValues(nc, "lat")
	if err != nil {
		return nil, err
	}
	d.lon, err = axisValues(nc, "lon")
	if err != nil {
		return nil, err
	}
	tm, err := axisValues(nc, "time")
	if err != nil {
		return nil, err
	}
	d.months = len(tm)

	d.tmp, err = nc.GetVarGetter("tmp")
	if err != nil {
		return nil, err
	}
	dims := d.tmp.Dimensions()
	if len(dims) != 3 || dims[0] != "time" || dims[1] != "lat" || dims[2] != "lon" {
		return nil, errors.Errorf("tmp has dimensions %v, want [time lat lon]", dims)
	}
	d.fill, err = fillValue(d.tmp)
	if err != nil {
		return nil, err
	}

	ok = true
	return d, nil
}

func axisValues(nc api.Group, name string) ([]float32, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, err
	}
	v, err := vg.Values()
	if err != nil {
		return nil, err
	}
	vals, ok := v.([]float32)
	if !ok {
		return nil, errors.Errorf("axis %s has type %T, want []float32", name, v)
	}
	if len(vals) == 0 {
		return nil, errors.Errorf("axis %s is empty", name)
	}
	return vals, nil
}

func fillValue(vg api.VarGetter) (float32, error) {
	for _, name := range []string{"missing_value", "_FillValue"} {
		v, has := vg.Attributes().Get(name)
		if !has {
			continue
		}
		switch fv := v.(type) {
		case float32:
			return fv, nil
		case []float32:
			if len(fv) > 0 {
				return fv[0], nil
			}
		}
		return 0, errors.Errorf("attribute %s has type %T, want float32", name, v)
	}
	return 0, errors.New("tmp has neither a missing_value nor a _FillValue attribute")
}

// Close closes the dataset.
func (d *Dataset) Close() {
	d.nc.Close()
}

// Summary returns the summary information about the dataset suitable for
// logging.
func (d *Dataset) Summary() []any {
	return []any{
		"latCnt", len(d.lat),
		"lonCnt", len(d.lon),
		"months", d.months,
		"fill", d.fill,
	}
}

// CellCenter returns the axis values of the grid cell nearest to (lat, lon).
func (d *Dataset) CellCenter(lat, lon float64) (float32, float32) {
	return d.lat[NearestIndex(d.lat, lat)], d.lon[NearestIndex(d.lon, lon)]
}

// MeanAt returns the masked mean of the monthly series at the grid cell
// nearest to (lat, lon). The nearest cell is chosen independently per axis,
// which on a regular grid is the cell whose center is closest.
func (d *Dataset) MeanAt(lat, lon float64) (float64, error) {
	vals, err := d.series(NearestIndex(d.lat, lat), NearestIndex(d.lon, lon))
	if err != nil {
		return 0, err
	}
	return MaskedMean(vals, d.fill)
}

// series reads the cell's monthly values one timestep at a time so the full
// tmp variable never has to fit in memory.
func (d *Dataset) series(i, j int) ([]float32, error) {
	out := make([]float32, d.months)
	for t := 0; t < d.months; t++ {
		v, err := d.tmp.GetSlice(int64(t), int64(t+1))
		if err != nil {
			return nil, errors.Wrapf(err, "month %d", t)
		}
		slab, ok := v.([][][]float32)
		if !ok || len(slab) != 1 {
			return nil, errors.Errorf("month %d: tmp slab has type %T, want [1][lat][lon]float32", t, v)
		}
		out[t] = slab[0][i][j]
	}
	return out, nil
}
