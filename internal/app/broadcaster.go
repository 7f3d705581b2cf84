package app

import (
	"errors"
	"fmt"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Broadcaster resolves an addressing mode to targets from a registry
// snapshot and delivers to each one independently. It holds no state of
// its own beyond the registry and policy it was built with.
type Broadcaster struct {
	Registry *Registry
	Policy   Policy
}

func NewBroadcaster(reg *Registry, policy Policy) *Broadcaster {
	if policy == nil {
		policy = DropPolicy{}
	}
	return &Broadcaster{Registry: reg, Policy: policy}
}

// Lobby delivers line to every registered session except the given one.
// Pass nil to include everybody, sender included.
func (b *Broadcaster) Lobby(line string, except core.MemberSession) core.PublishResult {
	targets := lo.Filter(b.Registry.Snapshot(), func(ms core.MemberSession, _ int) bool {
		return ms != except
	})
	return b.deliver(targets, line)
}

// Room delivers line to every registered session holding room in its own
// membership set at the moment of the snapshot. Membership of the sender
// is checked by the caller.
func (b *Broadcaster) Room(room domain.RoomName, line string) core.PublishResult {
	targets := lo.Filter(b.Registry.Snapshot(), func(ms core.MemberSession, _ int) bool {
		return ms.InRoom(room)
	})
	res := b.deliver(targets, line)
	log.Debug().Str("module", "app.broadcaster").Str("room", string(room)).Int("sent_to", res.SendTo).Msg("room post")
	return res
}

// Direct delivers line to the session registered as username.
func (b *Broadcaster) Direct(username, line string) (core.MemberSession, core.PublishResult, error) {
	target, ok := b.Registry.Lookup(username)
	if !ok {
		return nil, core.PublishResult{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
	}
	return target, b.deliver([]core.MemberSession{target}, line), nil
}

func (b *Broadcaster) deliver(targets []core.MemberSession, line string) core.PublishResult {
	res := core.PublishResult{}
	for _, ms := range targets {
		switch err := safeSend(ms, line); {
		case err == nil:
			res.SendTo++
		case errors.Is(err, core.ErrBackpressure):
			res.Dropped = append(res.Dropped, ms)
		default:
			res.Failed = append(res.Failed, ms)
			log.Debug().Err(err).Str("module", "app.broadcaster").Str("sid", string(ms.ID())).Msg("delivery failed")
		}
	}
	b.applyPolicy(res.Dropped)
	return res
}

func (b *Broadcaster) applyPolicy(slow []core.MemberSession) {
	for _, ms := range slow {
		switch b.Policy.OnBackPressure(ms) {
		case KickMember:
			log.Warn().Str("module", "app.broadcaster").Str("sid", string(ms.ID())).Str("username", ms.Username()).Msg("kicking slow member")
			closeQuietly(ms.Signal())
		case DropLine:
			log.Warn().Str("module", "app.broadcaster").Str("sid", string(ms.ID())).Str("username", ms.Username()).Msg("outbox full, line dropped")
		case NoAction:
		}
	}
}

// safeSend isolates one target: a failing or panicking connection never
// reaches the sender.
func safeSend(ms core.MemberSession, line string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("send panicked: %v", r)
		}
	}()
	return ms.Signal().TrySend(line)
}

func closeQuietly(c core.LineConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "app.broadcaster").Interface("panic", r).Msg("close panicked")
		}
	}()
	c.Close()
}
