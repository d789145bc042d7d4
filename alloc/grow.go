package alloc

import (
	"go.uber.org/zap"

	"github.com/wippyai/containers"
)

// reserve makes sure [0, end) is addressable, growing the space when the
// configuration allows it. It reports false when end is out of reach.
func reserve(space containers.Space, cfg Config, end uint64, stats *Stats) bool {
	if cfg.Limit != 0 && end > uint64(cfg.Limit) {
		return false
	}
	size := uint64(space.Size())
	if end <= size {
		return true
	}
	pages := (end - size + containers.PageSize - 1) / containers.PageSize
	if pages < uint64(cfg.GrowPages) {
		pages = uint64(cfg.GrowPages)
	}
	if pages > uint64(^uint32(0)) {
		return false
	}
	prev, err := space.Grow(uint32(pages))
	if err != nil && pages > (end-size+containers.PageSize-1)/containers.PageSize {
		// retry with the exact amount when the preferred step does not fit
		pages = (end - size + containers.PageSize - 1) / containers.PageSize
		prev, err = space.Grow(uint32(pages))
	}
	if err != nil {
		Logger().Debug("space growth refused",
			zap.Uint64("pages", pages),
			zap.Error(err),
		)
		return false
	}
	stats.Grows++
	Logger().Debug("space grown",
		zap.Uint32("from_pages", prev),
		zap.Uint64("by_pages", pages),
	)
	return true
}
