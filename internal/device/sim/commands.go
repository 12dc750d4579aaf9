package sim

import (
	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/chirp"
)

type command struct {
	args []chirp.Type
	run  func(args []chirp.Value) (int32, []chirp.Value)
}

func ok(values ...chirp.Value) (int32, []chirp.Value) {
	return pixy.StatusSuccess, values
}

// commandTable binds command names to register accessors. Handlers run
// with d.mu held.
func (d *Device) commandTable() map[string]command {
	r := &d.regs
	return map[string]command{
		"version": {run: func([]chirp.Value) (int32, []chirp.Value) {
			return ok(chirp.Uint16(r.Version[0]), chirp.Uint16(r.Version[1]), chirp.Uint16(r.Version[2]))
		}},

		"cam_getMode": {run: func([]chirp.Value) (int32, []chirp.Value) {
			return ok(chirp.Int32(int32(r.Mode)))
		}},
		"cam_setMode": {args: []chirp.Type{chirp.TypeUint8}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			r.Mode = uint8(a[0].Uint32())
			return ok(chirp.Int32(0))
		}},

		"cam_getAWB": {run: func([]chirp.Value) (int32, []chirp.Value) {
			return ok(chirp.Int32(int32(r.AutoWhiteBalance)))
		}},
		"cam_setAWB": {args: []chirp.Type{chirp.TypeUint8}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			r.AutoWhiteBalance = uint8(a[0].Uint32())
			return ok(chirp.Int32(0))
		}},

		"cam_getWBV": {run: func([]chirp.Value) (int32, []chirp.Value) {
			return ok(chirp.Uint32(r.WhiteBalance))
		}},
		"cam_setWBV": {args: []chirp.Type{chirp.TypeUint32}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			r.WhiteBalance = a[0].Uint32()
			return ok(chirp.Int32(0))
		}},

		"cam_getAEC": {run: func([]chirp.Value) (int32, []chirp.Value) {
			return ok(chirp.Int32(int32(r.AutoExposure)))
		}},
		"cam_setAEC": {args: []chirp.Type{chirp.TypeUint8}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			r.AutoExposure = uint8(a[0].Uint32())
			return ok(chirp.Int32(0))
		}},

		"cam_getECV": {run: func([]chirp.Value) (int32, []chirp.Value) {
			return ok(chirp.Uint32(r.Exposure))
		}},
		"cam_setECV": {args: []chirp.Type{chirp.TypeUint32}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			r.Exposure = a[0].Uint32()
			return ok(chirp.Int32(0))
		}},

		"cam_getBrightness": {run: func([]chirp.Value) (int32, []chirp.Value) {
			return ok(chirp.Int32(int32(r.Brightness)))
		}},
		"cam_setBrightness": {args: []chirp.Type{chirp.TypeInt8}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			r.Brightness = int8(a[0].Int32())
			return ok(chirp.Int32(0))
		}},

		"led_set": {args: []chirp.Type{chirp.TypeUint32}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			r.LED = a[0].Uint32()
			return ok(chirp.Int32(0))
		}},
		"led_getMaxCurrent": {run: func([]chirp.Value) (int32, []chirp.Value) {
			return ok(chirp.Uint32(r.LEDMaxCurrent))
		}},
		"led_setMaxCurrent": {args: []chirp.Type{chirp.TypeUint32}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			r.LEDMaxCurrent = a[0].Uint32()
			return ok(chirp.Int32(0))
		}},

		"rcs_getPos": {args: []chirp.Type{chirp.TypeInt8}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			ch := a[0].Int32()
			if ch < 0 || ch > 1 {
				return pixy.StatusInvalidParameter, nil
			}
			return ok(chirp.Int32(int32(r.ServoPosition[ch])))
		}},
		"rcs_setPos": {args: []chirp.Type{chirp.TypeInt8, chirp.TypeInt16}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			ch, pos := a[0].Int32(), a[1].Int32()
			if ch < 0 || ch > 1 || pos < 0 || pos > 999 {
				return pixy.StatusInvalidParameter, nil
			}
			r.ServoPosition[ch] = int16(pos)
			return ok(chirp.Int32(0))
		}},
		"rcs_setFreq": {args: []chirp.Type{chirp.TypeInt16}, run: func(a []chirp.Value) (int32, []chirp.Value) {
			hz := a[0].Int32()
			if hz < 20 || hz > 300 {
				return pixy.StatusInvalidParameter, nil
			}
			r.ServoFrequency = int16(hz)
			return ok(chirp.Int32(0))
		}},
	}
}
