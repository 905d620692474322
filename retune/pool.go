package retune

import "fmt"

// ClashPolicy decides what happens when a note-on arrives and every
// channel slot in its group is already occupied by a different detune
// requirement.
type ClashPolicy int

const (
	// StealOldest evicts the longest-held active note in the group and
	// reassigns its channel to the new note.
	StealOldest ClashPolicy = iota
	// StealQuietest evicts the active note with the lowest recorded
	// velocity in the group.
	StealQuietest
	// DropNew rejects the new note; it does not sound.
	DropNew
	// SoundUntuned reuses the oldest note's channel for the new note
	// without releasing the old note, leaving it sounding with
	// whatever detune the channel ends up carrying.
	SoundUntuned
)

func (c ClashPolicy) String() string {
	switch c {
	case StealOldest:
		return "steal-oldest"
	case StealQuietest:
		return "steal-quietest"
	case DropNew:
		return "drop-new"
	case SoundUntuned:
		return "sound-untuned"
	default:
		return "unknown"
	}
}

// ParseClashPolicy parses the CLI spelling of a clash policy.
func ParseClashPolicy(s string) (ClashPolicy, error) {
	switch s {
	case "steal-oldest":
		return StealOldest, nil
	case "steal-quietest":
		return StealQuietest, nil
	case "drop-new":
		return DropNew, nil
	case "sound-untuned":
		return SoundUntuned, nil
	default:
		return 0, fmt.Errorf("retune: unknown clash policy %q", s)
	}
}

type activeVoice struct {
	key      int
	channel  int
	usageID  int64
	velocity byte
}

// pool is a fixed-size set of channel slots shared by the notes of one
// group (one pitch-class letter for the Octave technique, or a single
// implicit group for the other techniques). Slots are identified by
// channel number.
type pool struct {
	mode     ClashPolicy
	channels []int
	free     []int
	active   map[int]*activeVoice // by key
	usage    int64
}

func newPool(mode ClashPolicy, channels []int) *pool {
	free := append([]int(nil), channels...)
	return &pool{
		mode:     mode,
		channels: channels,
		free:     free,
		active:   make(map[int]*activeVoice),
	}
}

// keyPressed attempts to assign a channel to key. accepted is false only
// under DropNew when the pool is full; in every other case a channel is
// returned even if it required stealing. stolenKey/stolenChannel report
// an eviction, if one occurred.
//
// compatible, if non-nil, is consulted before a free slot or a steal: it
// reports whether a channel already carrying an active voice is tuned in
// a way that key could share without retuning it (e.g. a channel whose
// sole detune already matches key's, or whose Octave letter offset is
// already what key needs). Sharing a compatible channel avoids consuming
// a fresh slot or evicting a held note for no reason.
func (p *pool) keyPressed(key int, velocity byte, compatible func(channel int) bool) (channel int, accepted bool, stolenKey int, stolenChannel int, stole bool) {
	p.usage++
	usageID := p.usage

	if v, ok := p.active[key]; ok {
		v.usageID = usageID
		v.velocity = velocity
		return v.channel, true, 0, 0, false
	}

	if compatible != nil {
		for _, ch := range p.channelsInUse() {
			if compatible(ch) {
				p.active[key] = &activeVoice{key: key, channel: ch, usageID: usageID, velocity: velocity}
				return ch, true, 0, 0, false
			}
		}
	}

	if len(p.free) > 0 {
		ch := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.active[key] = &activeVoice{key: key, channel: ch, usageID: usageID, velocity: velocity}
		return ch, true, 0, 0, false
	}

	switch p.mode {
	case DropNew:
		return 0, false, 0, 0, false

	case StealOldest, SoundUntuned:
		victim := p.oldest()
		if victim == nil {
			return 0, false, 0, 0, false
		}
		ch := victim.channel
		stolenKey, stolenChannel, stole = victim.key, victim.channel, true
		if p.mode == StealOldest {
			delete(p.active, victim.key)
		}
		p.active[key] = &activeVoice{key: key, channel: ch, usageID: usageID, velocity: velocity}
		return ch, true, stolenKey, stolenChannel, stole

	case StealQuietest:
		victim := p.quietest()
		if victim == nil {
			return 0, false, 0, 0, false
		}
		ch := victim.channel
		stolenKey, stolenChannel, stole = victim.key, victim.channel, true
		delete(p.active, victim.key)
		p.active[key] = &activeVoice{key: key, channel: ch, usageID: usageID, velocity: velocity}
		return ch, true, stolenKey, stolenChannel, stole

	default:
		return 0, false, 0, 0, false
	}
}

// keyReleased frees the channel held by key, if any.
func (p *pool) keyReleased(key int) (channel int, ok bool) {
	v, found := p.active[key]
	if !found {
		return 0, false
	}
	delete(p.active, key)
	p.free = append(p.free, v.channel)
	return v.channel, true
}

// findChannel reports the channel currently assigned to key, if it is
// held by this pool.
func (p *pool) findChannel(key int) (channel int, ok bool) {
	v, found := p.active[key]
	if !found {
		return 0, false
	}
	return v.channel, true
}

// channelsInUse returns the distinct channels currently held by at least
// one active voice.
func (p *pool) channelsInUse() []int {
	seen := make(map[int]bool, len(p.active))
	var channels []int
	for _, v := range p.active {
		if !seen[v.channel] {
			seen[v.channel] = true
			channels = append(channels, v.channel)
		}
	}
	return channels
}

// keyOnChannel returns a key currently active on ch within this pool, if
// any.
func (p *pool) keyOnChannel(ch int) (int, bool) {
	for k, v := range p.active {
		if v.channel == ch {
			return k, true
		}
	}
	return 0, false
}

func (p *pool) oldest() *activeVoice {
	var best *activeVoice
	for _, v := range p.active {
		if best == nil || v.usageID < best.usageID {
			best = v
		}
	}
	return best
}

func (p *pool) quietest() *activeVoice {
	var best *activeVoice
	for _, v := range p.active {
		if best == nil || v.velocity < best.velocity ||
			(v.velocity == best.velocity && v.usageID < best.usageID) {
			best = v
		}
	}
	return best
}
