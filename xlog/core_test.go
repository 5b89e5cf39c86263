package xlog

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConsoleCore(t *testing.T) {
	w := newTestMemWriter(t)
	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	cc := newConsoleCore(
		&lvlEnabler,
		JSON,
		_writerMax,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.Nil(t, cc)

	cc = newConsoleCore(
		&lvlEnabler,
		JSON,
		testMemAsOut,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.NotNil(t, cc.outEncoder())
	require.NotNil(t, cc.writeSyncer())
	require.NotNil(t, cc.levelEncoder())
	require.NotNil(t, cc.timeEncoder())
	require.NotNil(t, cc.(*consoleCore).core.lvlEnabler)
	require.NotNil(t, cc.(*consoleCore).core.core)

	require.True(t, cc.Enabled(zapcore.DebugLevel))
	require.True(t, cc.Enabled(zapcore.InfoLevel))
	require.True(t, cc.Enabled(zapcore.WarnLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))

	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, cc.Enabled(zapcore.DebugLevel))
	require.False(t, cc.Enabled(zapcore.InfoLevel))
	require.False(t, cc.Enabled(zapcore.WarnLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))
	require.Nil(t, cc.Check(zapcore.Entry{Level: zapcore.DebugLevel}, nil))

	lvlEnabler.SetLevel(zapcore.DebugLevel)

	core := cc.With([]zap.Field{zap.String("key", "value")})
	require.NotNil(t, core)

	ce := cc.Check(zapcore.Entry{Level: zapcore.DebugLevel, Message: "console"}, nil)
	require.NotNil(t, ce)
	ce.Write(zap.String("key", "value"))
	require.NoError(t, cc.Sync())

	wrapped, err := WrapCore(cc, componentCoreEncoderCfg())
	require.NoError(t, err)
	require.NotNil(t, wrapped)
	err = wrapped.Write(zapcore.Entry{Level: zapcore.DebugLevel, LoggerName: "commonCore", Message: "wrapped"}, []zap.Field{zap.String("key", "value")})
	require.NoError(t, err)
	require.NoError(t, wrapped.Sync())

	// The wrapped core follows the level of the console core.
	lvlEnabler.SetLevel(zapcore.WarnLevel)
	require.False(t, wrapped.Enabled(zapcore.InfoLevel))
	lvlEnabler.SetLevel(zapcore.DebugLevel)

	lines := w.lines(t)
	require.Len(t, lines, 2)
	require.Equal(t, "console", lines[0]["msg"])
	require.Equal(t, "value", lines[0]["key"])
	require.Equal(t, "DEBUG", lines[0]["lvl"])
	require.Equal(t, "wrapped", lines[1]["msg"])
	require.Equal(t, "commonCore", lines[1]["component"])

	_, err = WrapCore(nil, componentCoreEncoderCfg())
	require.Error(t, err)
}

func TestCommonCore(t *testing.T) {
	w := newTestMemWriter(t)
	var cc xLogCore = &commonCore{}
	require.Nil(t, cc.outEncoder())
	require.Nil(t, cc.writeSyncer())
	require.Nil(t, cc.levelEncoder())
	require.Nil(t, cc.timeEncoder())

	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	common := &commonCore{
		lvlEnabler: &lvlEnabler,
		lvlEnc:     zapcore.CapitalLevelEncoder,
		tsEnc:      zapcore.ISO8601TimeEncoder,
		ws:         getOutWriterByType(testMemAsOut),
		enc:        getEncoderByType(logEncoderType(6)),
	}
	config := defaultCoreEncoderCfg()
	config.EncodeLevel = common.lvlEnc
	config.EncodeTime = common.tsEnc
	common.core = zapcore.NewCore(common.enc(config), common.ws, common.lvlEnabler)
	cc = common

	require.NotNil(t, cc.outEncoder())
	require.NotNil(t, cc.writeSyncer())
	require.NotNil(t, cc.levelEncoder())
	require.NotNil(t, cc.timeEncoder())

	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, cc.Enabled(zapcore.WarnLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))
	lvlEnabler.SetLevel(zapcore.DebugLevel)

	ce := cc.Check(zapcore.Entry{Level: zapcore.InfoLevel, Message: "common"}, nil)
	require.NotNil(t, ce)
	ce.Write()
	require.NoError(t, cc.Sync())

	lines := w.lines(t)
	require.Len(t, lines, 1)
	require.Equal(t, "common", lines[0]["msg"])
	require.Equal(t, "INFO", lines[0]["lvl"])
}

func TestTeeCore(t *testing.T) {
	w := newTestMemWriter(t)
	tee := make(xLogMultiCore, 0, 2)
	require.Nil(t, tee.writeSyncer())
	require.Nil(t, tee.levelEncoder())
	require.Nil(t, tee.timeEncoder())
	require.Nil(t, tee.outEncoder())

	debugLvl := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	warnLvl := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	teeCore := XLogTeeCore(
		newConsoleCore(&debugLvl, JSON, testMemAsOut, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder),
		nil,
		newConsoleCore(&warnLvl, JSON, testMemAsOut, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder),
	)
	tee = teeCore.(xLogMultiCore)
	require.Len(t, tee, 2)
	require.Equal(t, zapcore.DebugLevel, tee.Level())
	require.True(t, tee.Enabled(zapcore.DebugLevel))

	var wg sync.WaitGroup
	wg.Add(2)
	for g := 0; g < 2; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				ce := tee.Check(zapcore.Entry{Level: zapcore.InfoLevel, Message: "tee"}, nil)
				ce.Write(zap.String("i", strconv.Itoa(g*100+i)))
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, tee.Sync())
	// Info entries only pass the debug core.
	require.Len(t, w.lines(t), 100)

	w.Reset()
	ce := tee.Check(zapcore.Entry{Level: zapcore.ErrorLevel, Message: "both"}, nil)
	ce.Write()
	require.Len(t, w.lines(t), 2)

	wrapped, err := WrapCores(tee, componentCoreEncoderCfg())
	require.NoError(t, err)
	require.True(t, wrapped.Enabled(zapcore.InfoLevel))
	debugLvl.SetLevel(zapcore.ErrorLevel)
	require.False(t, wrapped.Enabled(zapcore.InfoLevel))
	require.True(t, wrapped.Enabled(zapcore.WarnLevel))

	withCore := tee.With([]zap.Field{zap.String("k", "v")})
	require.NotNil(t, withCore)
}
