package tam

import (
	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/texfmt"
	"golang.org/x/exp/slog"
)

// StageState records who owns a texture's previous storage while its chain is rebuilt
type StageState uint8

const (
	// StageOwnedByTexture means the texture owns its storage and nothing is staged
	StageOwnedByTexture StageState = iota
	// StageExternal means the storage was copied into a host block and released, leaving
	// room for the new chain
	StageExternal
	// StagePendingFree means no host block was available: the storage is read in place and
	// released only once the new chain holds its data
	StagePendingFree
)

func (s StageState) String() string {
	switch s {
	case StageOwnedByTexture:
		return "OwnedByTexture"
	case StageExternal:
		return "External"
	case StagePendingFree:
		return "PendingFree"
	default:
		return "Unknown"
	}
}

type staging struct {
	state StageState
	desc  gxm.TextureDescriptor
	old   *Block
	host  *Block
}

// stage detaches tex's storage so that a new chain can be allocated in its place
func (m *Manager) stage(tex *Texture) *staging {
	s := &staging{desc: tex.Descriptor, old: tex.block}

	host, err := m.alloc.AllocateStaging(tex.block.Size())
	if err != nil {
		s.state = StagePendingFree
		m.logger.Warn("Manager::stage reading storage in place",
			slog.Int("Size", tex.block.Size()),
			slog.Any("error", err),
		)
		return s
	}

	copy(host.Bytes(), tex.block.Bytes())
	m.release(tex.block)
	tex.block = nil

	s.state = StageExternal
	s.host = host
	return s
}

// source is the previous storage's contents
func (s *staging) source() []byte {
	if s.state == StageExternal {
		return s.host.Bytes()
	}
	return s.old.Bytes()
}

// commit gives tex its new storage and releases whatever the staging held
func (m *Manager) commit(s *staging, tex *Texture, block *Block, desc gxm.TextureDescriptor) {
	switch s.state {
	case StageExternal:
		m.release(s.host)
	case StagePendingFree:
		m.release(s.old)
	}

	s.state = StageOwnedByTexture
	tex.block = block
	tex.Descriptor = desc
}

// restore returns tex to the storage it had before staging, after the new chain could not
// be built
func (m *Manager) restore(s *staging, tex *Texture) error {
	if s.state != StageExternal {
		s.state = StageOwnedByTexture
		return nil
	}

	defer m.release(s.host)
	s.state = StageOwnedByTexture

	block, err := m.alloc.AllocateAligned(s.host.Size(), uint(texfmt.Alignment(s.desc.Format)), m.textureDomain())
	if err != nil {
		tex.Descriptor = gxm.TextureDescriptor{}
		return errors.Wrap(err, "failed to restore texture storage")
	}
	copy(block.Bytes(), s.host.Bytes())

	desc, err := m.initDescriptor(block, s.desc)
	if err != nil {
		m.release(block)
		tex.Descriptor = gxm.TextureDescriptor{}
		return errors.Wrap(err, "failed to restore texture descriptor")
	}

	tex.block = block
	tex.Descriptor = desc
	return nil
}

func (m *Manager) initDescriptor(block *Block, desc gxm.TextureDescriptor) (gxm.TextureDescriptor, error) {
	if desc.Layout == gxm.LayoutSwizzledArbitrary {
		return m.device.InitSwizzledTexture(block.Memory(), desc.Format, desc.Width, desc.Height, desc.MipCount)
	}
	return m.device.InitLinearTexture(block.Memory(), desc.Format, desc.Width, desc.Height, desc.MipCount)
}

// replaceChain moves tex onto a new chain of size bytes described by desc, copying the first
// keep bytes of the old storage into it and then calling fill to write the remaining levels.
// tex only sees the new chain once fill succeeds; on any failure it keeps its previous
// contents.
func (m *Manager) replaceChain(tex *Texture, size, keep int, desc gxm.TextureDescriptor, fill func(chain []byte) error) error {
	staged := m.stage(tex)

	block, err := m.alloc.AllocateAligned(size, uint(texfmt.Alignment(desc.Format)), m.textureDomain())
	if err != nil {
		return errors.CombineErrors(err, m.restore(staged, tex))
	}

	chain := block.Bytes()
	clear(chain)
	copy(chain, staged.source()[:keep])

	initialized, err := m.initDescriptor(block, desc)
	if err != nil {
		m.release(block)
		err = mark(errors.Wrapf(err, "hardware rejected a %d level chain", desc.MipCount), ErrInvalidValue)
		return errors.CombineErrors(err, m.restore(staged, tex))
	}

	err = fill(chain)
	if err != nil {
		// Transfers submitted before the failure still target the chain
		if waitErr := m.device.WaitTransfers(); waitErr != nil {
			err = errors.CombineErrors(err, errors.Mark(errors.Wrap(waitErr, "failed draining transfers"), ErrInternal))
		}
		m.release(block)
		return errors.CombineErrors(err, m.restore(staged, tex))
	}

	m.logger.Debug("Manager::replaceChain",
		slog.String("Staging", staged.state.String()),
		slog.Int("Size", size),
		slog.Int("MipCount", desc.MipCount),
	)
	m.commit(staged, tex, block, initialized)
	return nil
}
