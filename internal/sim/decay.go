// Package sim holds small deterministic numeric models used by journaling
// routines: reputation decay over time and note-retention scoring. They are
// toys with chosen constants, not fits against real data.
package sim

import (
	"math"
	"sort"
	"time"
)

// ReputationParams drives a reputation decay run.
type ReputationParams struct {
	Initial  float64       // starting reputation
	Floor    float64       // reputation decays toward this, never below
	HalfLife time.Duration // time for the distance to the floor to halve
	Step     time.Duration // sample spacing
	Span     time.Duration // total simulated range
	Boosts   []Boost       // engagement events that bump reputation
}

// Boost is a one-off reputation bump at an offset into the run.
type Boost struct {
	At     time.Duration
	Amount float64
}

// ReputationPoint is one sample of a decay run.
type ReputationPoint struct {
	At    time.Duration
	Value float64
}

// Reputation simulates exponential decay toward the floor, applying boosts
// at their offsets. Samples are taken every Step across Span, inclusive of
// both endpoints.
func Reputation(p ReputationParams) []ReputationPoint {
	if p.Step <= 0 || p.Span <= 0 || p.HalfLife <= 0 {
		return nil
	}
	boosts := make([]Boost, len(p.Boosts))
	copy(boosts, p.Boosts)
	sort.Slice(boosts, func(i, j int) bool { return boosts[i].At < boosts[j].At })

	// Per-step decay factor for the distance above the floor.
	k := math.Pow(0.5, p.Step.Seconds()/p.HalfLife.Seconds())

	value := p.Initial
	if value < p.Floor {
		value = p.Floor
	}
	var out []ReputationPoint
	bi := 0
	for at := time.Duration(0); at <= p.Span; at += p.Step {
		for bi < len(boosts) && boosts[bi].At <= at {
			value += boosts[bi].Amount
			bi++
		}
		out = append(out, ReputationPoint{At: at, Value: value})
		value = p.Floor + (value-p.Floor)*k
	}
	return out
}

// RetentionParams scores how well a note is remembered.
type RetentionParams struct {
	Age      time.Duration // time since the note was written
	Accesses int           // times the note has been revisited
	Strength time.Duration // base memory strength; zero means 7 days
}

// Retention returns an Ebbinghaus-style retention score in [0, 1]. Each
// revisit extends the effective memory strength, so frequently read notes
// decay slower.
func Retention(p RetentionParams) float64 {
	if p.Strength <= 0 {
		p.Strength = 7 * 24 * time.Hour
	}
	if p.Age <= 0 {
		return 1
	}
	s := p.Strength.Seconds() * (1 + float64(p.Accesses))
	return math.Exp(-p.Age.Seconds() / s)
}

// RevisitThreshold is the retention score below which a note is worth
// rereading.
const RevisitThreshold = 0.35

// ShouldRevisit reports whether a note has faded enough to resurface in a
// journal prompt.
func ShouldRevisit(p RetentionParams) bool {
	return Retention(p) < RevisitThreshold
}
