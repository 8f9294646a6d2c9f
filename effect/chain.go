package effect

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-rack/analysis"
	"github.com/cwbudde/algo-rack/param"
)

type entry struct {
	id       uuid.UUID
	name     string
	unit     Unit
	block    BlockUnit
	keyed    SidechainUnit
	controls *Controls
	meta     Metadata

	bypassed atomic.Bool
	muted    atomic.Bool

	in, out *analysis.LevelMeter
	cpu     *analysis.CPUMeter
}

// Chain is an ordered sequence of effect instances. Audio flows from entry 0
// to entry Len()-1.
//
// Process, ProcessSidechain, ProcessBlock and Reset belong to the audio
// goroutine. Structural changes (Add, Remove, Move, Clear, LoadState) must
// not run concurrently with them. Bypass, Mute, SetParam, ResetMeters and the
// meter readings may be used from any goroutine.
type Chain struct {
	reg        *Registry
	sampleRate float32
	log        logrus.FieldLogger
	metering   bool
	strict     bool

	bypassed   atomic.Bool
	meterReset atomic.Bool
	entries    []*entry
}

// NewChain creates an empty chain resolving effects from reg. The registry's
// sample rate and logger are used unless overridden.
func NewChain(reg *Registry, opts ...Option) *Chain {
	o := applyOptions(opts)
	c := &Chain{
		reg:        reg,
		sampleRate: reg.SampleRate(),
		log:        reg.Logger(),
		metering:   o.metering,
		strict:     o.strict,
	}
	if o.sampleRate > 0 {
		c.sampleRate = o.sampleRate
	}
	if o.log != nil {
		c.log = o.log
	}
	return c
}

// SampleRate returns the sample rate effects are built for.
func (c *Chain) SampleRate() float32 {
	return c.sampleRate
}

// Metering reports whether level and CPU meters are enabled.
func (c *Chain) Metering() bool {
	return c.metering
}

// Len returns the number of entries.
func (c *Chain) Len() int {
	return len(c.entries)
}

func (c *Chain) build(name string, params param.Values, id uuid.UUID) (*entry, error) {
	b, ok := c.reg.Get(name)
	if ok && c.strict {
		if err := param.CheckKnown(name, b.Metadata().Params, params); err != nil {
			return nil, err
		}
	}
	unit, controls, err := c.reg.ResolveContext(Context{SampleRate: c.sampleRate}, name, params.Clone())
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	e := &entry{
		id:       id,
		name:     name,
		unit:     unit,
		controls: controls,
		meta:     b.Metadata(),
	}
	e.block, _ = unit.(BlockUnit)
	e.keyed, _ = unit.(SidechainUnit)
	if c.metering {
		e.in = analysis.NewLevelMeter(0)
		e.out = analysis.NewLevelMeter(0)
		e.cpu = analysis.NewCPUMeter(float64(c.sampleRate))
	}
	return e, nil
}

// Add resolves name and appends it with bypass off. It returns the new
// entry's id.
func (c *Chain) Add(name string, params param.Values) (uuid.UUID, error) {
	e, err := c.build(name, params, uuid.Nil)
	if err != nil {
		return uuid.Nil, err
	}
	c.entries = append(c.entries, e)
	c.log.WithFields(logrus.Fields{
		"function": "Chain.Add",
		"effect":   name,
		"id":       e.id.String(),
		"index":    len(c.entries) - 1,
	}).Debug("Added effect to chain")
	return e.id, nil
}

// Insert resolves name and places it at index, shifting later entries.
// index may equal Len.
func (c *Chain) Insert(index int, name string, params param.Values) (uuid.UUID, error) {
	if index < 0 || index > len(c.entries) {
		return uuid.Nil, &IndexOutOfRangeError{Index: index, Len: len(c.entries)}
	}
	e, err := c.build(name, params, uuid.Nil)
	if err != nil {
		return uuid.Nil, err
	}
	c.entries = append(c.entries, nil)
	copy(c.entries[index+1:], c.entries[index:])
	c.entries[index] = e
	c.log.WithFields(logrus.Fields{
		"function": "Chain.Insert",
		"effect":   name,
		"id":       e.id.String(),
		"index":    index,
	}).Debug("Inserted effect into chain")
	return e.id, nil
}

func (c *Chain) at(index int) (*entry, error) {
	if index < 0 || index >= len(c.entries) {
		return nil, &IndexOutOfRangeError{Index: index, Len: len(c.entries)}
	}
	return c.entries[index], nil
}

// Process runs one frame through every entry in order. Bypassed entries pass
// their input through and muted entries output silence; neither is invoked.
func (c *Chain) Process(l, r float32) (float32, float32) {
	return c.process(l, r, 0, 0, false)
}

// ProcessSidechain is Process with a key signal. Entries implementing
// SidechainUnit follow keyL and keyR; every other entry processes normally.
func (c *Chain) ProcessSidechain(l, r, keyL, keyR float32) (float32, float32) {
	return c.process(l, r, keyL, keyR, true)
}

func (c *Chain) process(l, r, keyL, keyR float32, keyed bool) (float32, float32) {
	c.applyMeterReset()
	if c.bypassed.Load() {
		return l, r
	}
	for _, e := range c.entries {
		if e.bypassed.Load() {
			continue
		}
		if e.muted.Load() {
			l, r = 0, 0
			continue
		}
		if e.in != nil {
			e.in.Add(l, r)
		}
		if keyed && e.keyed != nil {
			l, r = e.keyed.ProcessSidechain(l, r, keyL, keyR)
		} else {
			l, r = e.unit.Process(l, r)
		}
		if e.out != nil {
			e.out.Add(l, r)
		}
	}
	return l, r
}

// ProcessBlock runs a block through the chain in place. Only the first
// min(len(left), len(right)) frames are processed. When metering is enabled
// each entry's processing time is recorded.
func (c *Chain) ProcessBlock(left, right []float32) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	c.applyMeterReset()
	if n == 0 || c.bypassed.Load() {
		return
	}
	left, right = left[:n], right[:n]
	for _, e := range c.entries {
		if e.bypassed.Load() {
			continue
		}
		if e.muted.Load() {
			clear(left)
			clear(right)
			continue
		}
		var start time.Time
		if e.cpu != nil {
			e.in.AddBlock(left, right)
			start = time.Now()
		}
		if e.block != nil {
			e.block.ProcessBlock(left, right)
		} else {
			for i := range left {
				left[i], right[i] = e.unit.Process(left[i], right[i])
			}
		}
		if e.cpu != nil {
			e.cpu.Record(time.Since(start), n)
			e.out.AddBlock(left, right)
		}
	}
}

// Reset clears the state of every unit and meter.
func (c *Chain) Reset() {
	for _, e := range c.entries {
		e.unit.Reset()
	}
	c.meterReset.Store(false)
	c.resetMeters()
}

// SetBypassed bypasses the whole chain. A bypassed chain is the identity.
func (c *Chain) SetBypassed(bypassed bool) {
	c.bypassed.Store(bypassed)
}

// Bypassed reports whether the whole chain is bypassed.
func (c *Chain) Bypassed() bool {
	return c.bypassed.Load()
}

// Bypass sets the bypass flag of entry index.
func (c *Chain) Bypass(index int, bypassed bool) error {
	e, err := c.at(index)
	if err != nil {
		return err
	}
	e.bypassed.Store(bypassed)
	return nil
}

// Mute sets the mute flag of entry index.
func (c *Chain) Mute(index int, muted bool) error {
	e, err := c.at(index)
	if err != nil {
		return err
	}
	e.muted.Store(muted)
	return nil
}

// IsBypassed reports whether entry index is bypassed. Out of range indices
// report false.
func (c *Chain) IsBypassed(index int) bool {
	e, err := c.at(index)
	return err == nil && e.bypassed.Load()
}

// IsMuted reports whether entry index is muted. Out of range indices report
// false.
func (c *Chain) IsMuted(index int) bool {
	e, err := c.at(index)
	return err == nil && e.muted.Load()
}

// Remove deletes entry index.
func (c *Chain) Remove(index int) error {
	e, err := c.at(index)
	if err != nil {
		return err
	}
	c.entries = slices.Delete(c.entries, index, index+1)
	c.log.WithFields(logrus.Fields{
		"function": "Chain.Remove",
		"effect":   e.name,
		"id":       e.id.String(),
		"index":    index,
	}).Debug("Removed effect from chain")
	return nil
}

// Move relocates entry from to position to. Entries in between shift by one.
func (c *Chain) Move(from, to int) error {
	e, err := c.at(from)
	if err != nil {
		return err
	}
	if _, err := c.at(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if from < to {
		copy(c.entries[from:to], c.entries[from+1:to+1])
	} else {
		copy(c.entries[to+1:from+1], c.entries[to:from])
	}
	c.entries[to] = e
	c.log.WithFields(logrus.Fields{
		"function": "Chain.Move",
		"effect":   e.name,
		"from":     from,
		"to":       to,
	}).Debug("Moved effect in chain")
	return nil
}

// Clear removes every entry.
func (c *Chain) Clear() {
	n := len(c.entries)
	c.entries = nil
	c.log.WithFields(logrus.Fields{
		"function": "Chain.Clear",
		"removed":  n,
	}).Debug("Cleared chain")
}

// IndexOf returns the position of the entry with id, or -1.
func (c *Chain) IndexOf(id uuid.UUID) int {
	for i, e := range c.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (c *Chain) indexOf(id uuid.UUID) (int, error) {
	if i := c.IndexOf(id); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// RemoveID deletes the entry with id.
func (c *Chain) RemoveID(id uuid.UUID) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	return c.Remove(i)
}

// MoveID relocates the entry with id to position to.
func (c *Chain) MoveID(id uuid.UUID, to int) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	return c.Move(i, to)
}

// BypassID sets the bypass flag of the entry with id.
func (c *Chain) BypassID(id uuid.UUID, bypassed bool) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	return c.Bypass(i, bypassed)
}

// SetParamID sets a parameter of the entry with id.
func (c *Chain) SetParamID(id uuid.UUID, name string, v float32) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	return c.SetParam(i, name, v)
}

// Controls returns the control surface of entry index.
func (c *Chain) Controls(index int) (*Controls, error) {
	e, err := c.at(index)
	if err != nil {
		return nil, err
	}
	return e.controls, nil
}

// SetParam sets a parameter of entry index, clamped to its range. Unknown
// names are ignored unless the chain was created WithStrictParams.
func (c *Chain) SetParam(index int, name string, v float32) error {
	e, err := c.at(index)
	if err != nil {
		return err
	}
	if !e.controls.Set(name, v) && c.strict {
		return &param.UnknownParameterError{Preset: e.name, Name: name}
	}
	return nil
}

// Name returns the preset name of entry index, or "" when out of range.
func (c *Chain) Name(index int) string {
	e, err := c.at(index)
	if err != nil {
		return ""
	}
	return e.name
}

// ID returns the id of entry index, or uuid.Nil when out of range.
func (c *Chain) ID(index int) uuid.UUID {
	e, err := c.at(index)
	if err != nil {
		return uuid.Nil
	}
	return e.id
}

// Metadata returns the preset metadata of entry index.
func (c *Chain) Metadata(index int) (Metadata, error) {
	e, err := c.at(index)
	if err != nil {
		return Metadata{}, err
	}
	return e.meta.clone(), nil
}

// Latency returns the summed latency in samples of every entry that is not
// bypassed. A bypassed chain has no latency.
func (c *Chain) Latency() int {
	if c.bypassed.Load() {
		return 0
	}
	total := 0
	for _, e := range c.entries {
		if !e.bypassed.Load() {
			total += e.meta.LatencySamples
		}
	}
	return total
}

// EffectLatency returns the latency in samples of entry index.
func (c *Chain) EffectLatency(index int) (int, error) {
	e, err := c.at(index)
	if err != nil {
		return 0, err
	}
	return e.meta.LatencySamples, nil
}

// EntryLevels is the input and output level reading of one entry.
type EntryLevels struct {
	ID     uuid.UUID
	Name   string
	Input  analysis.Levels
	Output analysis.Levels
}

// Levels returns the last published level reading of every entry, or nil
// when metering is disabled.
func (c *Chain) Levels() []EntryLevels {
	if !c.metering {
		return nil
	}
	out := make([]EntryLevels, len(c.entries))
	for i, e := range c.entries {
		out[i] = EntryLevels{ID: e.id, Name: e.name, Input: e.in.Levels(), Output: e.out.Levels()}
	}
	return out
}

// EntryCPU is the CPU reading of one entry.
type EntryCPU struct {
	ID          uuid.UUID
	Name        string
	Percent     float32
	PeakPercent float32
	Overloaded  bool
}

// CPUReport returns the CPU reading of every entry, or nil when metering is
// disabled. Readings are only recorded by ProcessBlock.
func (c *Chain) CPUReport() []EntryCPU {
	if !c.metering {
		return nil
	}
	out := make([]EntryCPU, len(c.entries))
	for i, e := range c.entries {
		out[i] = EntryCPU{
			ID:          e.id,
			Name:        e.name,
			Percent:     e.cpu.Percent(),
			PeakPercent: e.cpu.PeakPercent(),
			Overloaded:  e.cpu.Overloaded(),
		}
	}
	return out
}

// TotalCPUPercent returns the summed smoothed load of every entry.
func (c *Chain) TotalCPUPercent() float32 {
	var total float32
	for _, e := range c.entries {
		if e.cpu != nil {
			total += e.cpu.Percent()
		}
	}
	return total
}

// Overloaded reports whether any entry's CPU meter reports overload.
func (c *Chain) Overloaded() bool {
	for _, e := range c.entries {
		if e.cpu != nil && e.cpu.Overloaded() {
			return true
		}
	}
	return false
}

// ResetMeters requests that every level and CPU meter be cleared. The audio
// goroutine performs the reset at the start of its next Process or
// ProcessBlock call, so the readings persist until then.
func (c *Chain) ResetMeters() {
	c.meterReset.Store(true)
}

func (c *Chain) applyMeterReset() {
	if c.meterReset.Load() && c.meterReset.CompareAndSwap(true, false) {
		c.resetMeters()
	}
}

func (c *Chain) resetMeters() {
	for _, e := range c.entries {
		if e.cpu == nil {
			continue
		}
		e.in.Reset()
		e.out.Reset()
		e.cpu.Reset()
	}
}

// State captures the chain as a ChainState.
func (c *Chain) State() ChainState {
	s := NewChainState(c.sampleRate)
	s.Bypassed = c.bypassed.Load()
	s.Effects = make([]EffectState, len(c.entries))
	for i, e := range c.entries {
		s.Effects[i] = EffectState{
			ID:         e.id.String(),
			Name:       e.name,
			Parameters: e.controls.Snapshot(),
			Bypassed:   e.bypassed.Load(),
			Muted:      e.muted.Load(),
		}
	}
	return s
}

// LoadState replaces the chain with the entries described by s. Every entry
// is built before the chain is touched, so on error the chain is unchanged.
// Effects are built at the chain's sample rate regardless of s.SampleRate.
func (c *Chain) LoadState(s ChainState) error {
	entries, err := c.buildState(s)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"function": "Chain.LoadState",
			"version":  s.Version,
			"effects":  len(s.Effects),
			"error":    err.Error(),
		}).Warn("Failed to load chain state")
		return err
	}
	c.entries = entries
	c.bypassed.Store(s.Bypassed)
	c.log.WithFields(logrus.Fields{
		"function":    "Chain.LoadState",
		"effects":     len(entries),
		"sample_rate": s.SampleRate,
	}).Debug("Loaded chain state")
	return nil
}

func (c *Chain) buildState(s ChainState) ([]*entry, error) {
	if s.Version < 1 || s.Version > StateVersion {
		return nil, fmt.Errorf("unsupported chain state version %d", s.Version)
	}
	entries := make([]*entry, 0, len(s.Effects))
	seen := make(map[uuid.UUID]bool, len(s.Effects))
	for i, es := range s.Effects {
		id := uuid.Nil
		if es.ID != "" {
			if parsed, err := uuid.Parse(es.ID); err == nil && !seen[parsed] {
				id = parsed
			}
		}
		e, err := c.build(es.Name, es.Parameters, id)
		if err != nil {
			return nil, fmt.Errorf("effects[%d]: %w", i, err)
		}
		seen[e.id] = true
		e.bypassed.Store(es.Bypassed)
		e.muted.Store(es.Muted)
		entries = append(entries, e)
	}
	return entries, nil
}
