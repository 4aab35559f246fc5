package core

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestScope(t *testing.T) {
	founder := Scope{Unrestricted: true}
	director := Scope{CampusID: "c1"}

	assert.Equal(t, "c2", founder.Campus("c2"))
	assert.Equal(t, "", founder.Campus(""))
	assert.Equal(t, "c1", director.Campus("c2"))
	assert.Equal(t, "c1", director.Campus(""))

	assert.True(t, founder.Allows("c2"))
	assert.True(t, director.Allows("c1"))
	assert.False(t, director.Allows("c2"))
	assert.False(t, director.Allows(""))
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Awa Koné", CleanString("  Awa Koné\n"))
	assert.Equal(t, "awa@mail.ci", CleanString(" Awa@Mail.CI ", true))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.3, Round2(0.1+0.2))
	assert.Equal(t, 12.35, Round2(12.346))
	assert.Equal(t, -1.5, Round2(-1.499))
}

func TestToday(t *testing.T) {
	NowFunc = func() time.Time { return time.Date(2025, 3, 1, 0, 30, 0, 0, time.FixedZone("WAT", 3600)) }
	defer func() { NowFunc = time.Now }()
	assert.Equal(t, "2025-02-28", Today())
}

func TestIsNotFound(t *testing.T) {
	nf := NewNotFoundError("Étudiant non trouvé")
	assert.True(t, IsNotFound(nf))
	assert.True(t, IsNotFound(errors.Wrap(nf, "getting student")))
	assert.False(t, IsNotFound(ErrDuplicate))
	assert.False(t, IsNotFound(nil))
}
