package player

import (
	"github.com/bangnoise/gohap/cache"
	"github.com/bangnoise/gohap/timerange"
)

// videoPacket is a cached, independently-owned copy of one compressed
// video packet: the demuxer's own astiav.Packet is reused for the next
// read, so the bytes are copied out before storage.
type videoPacket struct {
	PTS, Duration int64
	Data          []byte
}

// Range implements cache.Item.
func (p videoPacket) Range() timerange.TimeRange {
	return timerange.New(p.PTS, p.Duration)
}

// Clone implements cache.Item.
func (p videoPacket) Clone() videoPacket {
	cp := make([]byte, len(p.Data))
	copy(cp, p.Data)
	return videoPacket{PTS: p.PTS, Duration: p.Duration, Data: cp}
}

// videoCache is the locking variant of PacketCache spec.md describes
// for the video stream. It is an alias of cache.LockingCache, which
// implements the active+stable split with a blocking, timed Fetch and,
// in FetchWaitActive, the "give up once the demuxer goes idle" wait
// update() uses; videoCache adds no behavior of its own.
type videoCache = cache.LockingCache[videoPacket]

func newVideoCache() *videoCache {
	return cache.NewLocking[videoPacket]()
}
