package vkbackend

import (
	"context"
	"log/slog"
	"strings"
	"unsafe"

	vk "github.com/goki/vulkan"
)

const debugReportExt = "VK_EXT_debug_report"

// reportLevel maps validation report flags to a log level; the most severe
// bit wins.
func reportLevel(flags vk.DebugReportFlags) slog.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return slog.LevelError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return slog.LevelWarn
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func (c *Context) debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64,
	location uint64, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
	c.log.Log(context.Background(), reportLevel(flags), "vulkan validation",
		"layer", strings.TrimSuffix(layerPrefix, "\x00"),
		"code", messageCode,
		"msg", strings.TrimSuffix(message, "\x00"))
	return vk.False
}

// createDebugReport forwards validation layer output to the context logger.
// The binding keeps one callback per process, so only the first context's
// logger receives reports.
func (c *Context) createDebugReport() error {
	info := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit),
		PfnCallback: c.debugReport,
	}
	var cb vk.DebugReportCallback
	if err := check("vkCreateDebugReportCallbackEXT", vk.CreateDebugReportCallback(c.instance, &info, nil, &cb)); err != nil {
		return err
	}
	c.debugCallback = cb
	return nil
}

func (c *Context) destroyDebugReport() {
	if c.debugCallback != vk.DebugReportCallback(vk.NullHandle) {
		vk.DestroyDebugReportCallback(c.instance, c.debugCallback, nil)
		c.debugCallback = vk.DebugReportCallback(vk.NullHandle)
	}
}
