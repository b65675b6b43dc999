package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"github.com/hubastard/grove-vk/engine/core"
)

func TestTranslateKey(t *testing.T) {
	for in, want := range map[glfw.Key]core.Key{
		glfw.KeyEscape: core.KeyEscape,
		glfw.KeySpace:  core.KeySpace,
		glfw.KeyP:      core.KeyP,
		glfw.KeyQ:      core.KeyQ,
		glfw.KeyD:      core.KeyD,
		glfw.KeyF1:     core.KeyUnknown,
	} {
		assert.Equal(t, want, translateKey(in), "key %d", in)
	}
}

func TestTranslateMods(t *testing.T) {
	assert.Equal(t, core.ModNone, translateMods(0))
	assert.Equal(t, core.ModCtrl|core.ModShift, translateMods(glfw.ModControl|glfw.ModShift))
	assert.Equal(t, core.ModAlt|core.ModSuper, translateMods(glfw.ModAlt|glfw.ModSuper))
}
