package player

import "github.com/bangnoise/gohap/timerange"

// readPlan is one demuxer request update() decided to issue: either a
// plain extension of the current read position, or a seek followed by
// a read when the gap to the wanted range is too large to just read
// through.
type readPlan struct {
	seek    bool
	seekTo  int64
	readTo  int64
	covered timerange.TimeRange
}

// nearnessMicros is how close the demuxer's last read must be to a
// wanted range's start, in AV_TIME_BASE units, before update() just
// reads through the gap instead of seeking.
const nearnessMicros = 250000

// planReads computes the demuxer requests needed to cover future,
// given what has already been requested (active) and where the
// demuxer's last read left off. It mutates neither argument.
func planReads(future timerange.Sequence, active *timerange.Set, lastRead int64) []readPlan {
	flat := timerange.Flatten(future)
	flat.RemoveSet(active)

	var plans []readPlan
	for _, r := range flat.Ranges() {
		if lastRead >= 0 && abs64(lastRead-r.Earliest()) <= nearnessMicros {
			plans = append(plans, readPlan{readTo: r.Latest(), covered: r})
		} else {
			plans = append(plans, readPlan{seek: true, seekTo: r.Earliest(), readTo: r.Latest(), covered: r})
		}
	}
	return plans
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// rescaleSetOutward rescales every bound of rng from a fromNum/fromDen
// second unit to a toNum/toDen second unit, rounding earliest bounds down and
// latest bounds up so the result never shrinks past what rng covered,
// which would otherwise drop frames at the cache window's edges.
func rescaleSetOutward(rng *timerange.Set, fromNum, fromDen, toNum, toDen int64) *timerange.Set {
	out := &timerange.Set{}
	for _, r := range rng.Ranges() {
		num, den := fromNum*toDen, fromDen*toNum
		earliest := floorDiv(r.Earliest()*num, den)
		latest := ceilDiv(r.Latest()*num, den)
		out.Add(timerange.New(earliest, latest-earliest+1))
	}
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
