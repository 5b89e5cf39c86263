package xlog

import (
	"fmt"
	"time"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// FxXLogger prints the fx events of the xtree application. Wiring
// (supply, provide, invoke) is logged at debug level, the lifecycle
// hooks at info level. Events the application does not emit end up
// in a single debug line with their type.
type FxXLogger struct {
	logger XLogger
}

func hookFields(fn, caller string) []zap.Field {
	return []zap.Field{
		zap.String("function", fn),
		zap.String("caller", caller),
	}
}

func (l *FxXLogger) hookExecuted(hook, fn, caller string, runtime time.Duration, err error) {
	fields := append(hookFields(fn, caller), zap.Duration("runtime", runtime))
	if err != nil {
		l.logger.Error(err, hook+" hook failed", fields...)
		return
	}
	l.logger.Info(hook+" hook done", fields...)
}

func (l *FxXLogger) wiringErr(err error, msg string, stacktrace []string) {
	if err != nil {
		l.logger.Error(err, msg, zap.Strings("stacktrace", stacktrace))
	}
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		l.logger.Debug("OnStart hook", hookFields(e.FunctionName, e.CallerName)...)
	case *fxevent.OnStartExecuted:
		l.hookExecuted("OnStart", e.FunctionName, e.CallerName, e.Runtime, e.Err)
	case *fxevent.OnStopExecuting:
		l.logger.Debug("OnStop hook", hookFields(e.FunctionName, e.CallerName)...)
	case *fxevent.OnStopExecuted:
		l.hookExecuted("OnStop", e.FunctionName, e.CallerName, e.Runtime, e.Err)
	case *fxevent.Supplied:
		l.logger.Debug("supplied", zap.String("type", e.TypeName))
		l.wiringErr(e.Err, "supply failed", e.StackTrace)
	case *fxevent.Provided:
		l.logger.Debug("provided",
			zap.String("constructor", e.ConstructorName),
			zap.Strings("types", e.OutputTypeNames),
		)
		l.wiringErr(e.Err, "provide failed", e.StackTrace)
	case *fxevent.Invoking:
		l.logger.Debug("invoking", zap.String("function", e.FunctionName))
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error(e.Err, "invoke failed",
				zap.String("function", e.FunctionName),
				zap.String("trace", e.Trace),
			)
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "start failed")
		} else {
			l.logger.Info("started")
		}
	case *fxevent.RollingBack:
		l.logger.Warn("start failed, rolling back", zap.Error(e.StartErr))
	case *fxevent.RolledBack:
		if e.Err != nil {
			l.logger.Error(e.Err, "roll back failed")
		}
	case *fxevent.Stopping:
		l.logger.Info("stopping", zap.String("signal", e.Signal.String()))
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "stop failed")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error(e.Err, "fx logger init failed")
		}
	default:
		l.logger.Debug("fx event", zap.String("event", fmt.Sprintf("%T", event)))
	}
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	return &FxXLogger{logger: componentLogger(logger, "Fx")}
}
