package compositor

import (
	"go.uber.org/zap"
)

// updateDrawables applies the model's per-tick change flags. Only changed
// attributes touch GPU memory and the draw order is sorted at most once.
func (r *Renderer) updateDrawables() {
	m := r.model
	if m == nil {
		return
	}

	resort := false
	for _, d := range r.drawables {
		i := d.Index
		if m.OpacityChanged(i) {
			if err := d.setOpacity(m.Opacity(i)); err != nil {
				r.log.Warn("opacity upload failed", zap.Int("part", i), zap.Error(err))
			}
		}
		if m.VertexPositionsChanged(i) {
			if err := d.writePositions(m.VertexPositions(i)); err != nil {
				r.log.Warn("position upload failed", zap.Int("part", i), zap.Error(err))
			}
		}
		if m.VisibilityChanged(i) {
			d.Visible = m.Visible(i)
		}
		if m.OrderChanged(i) {
			resort = true
		}
	}

	if resort {
		r.sortDrawOrder()
	}
}
