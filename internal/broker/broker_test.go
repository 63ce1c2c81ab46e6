package broker

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/sabberworm/wok/internal/descriptor"
	"github.com/sabberworm/wok/internal/dom"
	"github.com/sabberworm/wok/internal/pipe"
	"github.com/sabberworm/wok/internal/plugin"
	"github.com/sabberworm/wok/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// factoryCall records one invocation of a test factory.
type factoryCall struct {
	stage *plugin.Stage
	el    dom.Element
	args  []cty.Value
}

// recorder returns a factory that records its calls and returns controls.
func recorder(calls *[]factoryCall, controls func() *plugin.Controls) plugin.Factory {
	return func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		*calls = append(*calls, factoryCall{stage: st, el: el, args: args})
		return controls(), nil
	}
}

func emptyControls() *plugin.Controls { return &plugin.Controls{} }

func newTestBroker(t *testing.T, opts ...Option) *Broker {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))}, opts...)
	return New(DefaultConfig(), opts...)
}

func parse(t *testing.T, body string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString("<!DOCTYPE html><html><body>" + body + "</body></html>")
	require.NoError(t, err)
	return doc
}

func TestInit_NoWiring(t *testing.T) {
	b := newTestBroker(t)
	var calls []factoryCall
	require.NoError(t, b.UseFactory("test1", recorder(&calls, emptyControls)))

	doc := parse(t, `<div id="el" data-wok-test1></div>`)
	require.NoError(t, b.Init(doc.Root()))

	require.Len(t, calls, 1)
	assert.Equal(t, "div#el", calls[0].el.String())
	assert.Empty(t, calls[0].args)
	assert.False(t, calls[0].stage.HasInput())
	assert.False(t, calls[0].stage.HasOutput())

	_, err := calls[0].stage.Request()
	assert.ErrorIs(t, err, plugin.ErrStageUnbound)
	assert.ErrorIs(t, calls[0].stage.Render(), plugin.ErrStageUnbound)

	assert.Equal(t, []string{"wok-test1"}, calls[0].el.Classes())
	assert.Empty(t, b.Names(), "no pipes may be created without wiring")
}

func TestInit_InputWithArgument(t *testing.T) {
	b := newTestBroker(t)
	var calls []factoryCall
	require.NoError(t, b.UseFactory("test1", recorder(&calls, func() *plugin.Controls {
		return &plugin.Controls{Render: func(values ...any) {}}
	})))

	doc := parse(t, `<div data-wok-test1="input//1"></div>`)
	require.NoError(t, b.Init(doc.Root()))

	require.Len(t, calls, 1)
	require.Len(t, calls[0].args, 1)
	assert.True(t, calls[0].args[0].Equals(cty.NumberIntVal(1)).True())
	assert.Equal(t, "input", calls[0].stage.InputName())
	assert.Empty(t, calls[0].stage.OutputName())
	assert.Same(t, b, calls[0].stage.Pipes())
	assert.Equal(t, pipe.Snapshot{Name: "input", Destinations: 1}, b.Describe("input"))
}

func TestInit_OutputWithoutRequest(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.UseFactory("test1", func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		return &plugin.Controls{Render: func(values ...any) {}}, nil
	}))

	doc := parse(t, `<div data-wok-test1="/out"></div>`)
	err := b.Init(doc.Root())
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrPluginContract)
	assert.Contains(t, err.Error(), "output pipes")
}

func TestInit_InputWithoutRender(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.UseFactory("test1", func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		return &plugin.Controls{Request: func(options ...any) (any, error) { return nil, nil }}, nil
	}))

	doc := parse(t, `<div data-wok-test1="in"></div>`)
	err := b.Init(doc.Root())
	assert.ErrorIs(t, err, plugin.ErrPluginContract)
	assert.Contains(t, err.Error(), "input pipes")
}

func TestInit_NilControls(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.UseFactory("test1", func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		return nil, nil
	}))

	doc := parse(t, `<div id="x" data-wok-test1></div>`)
	err := b.Init(doc.Root())
	assert.ErrorIs(t, err, plugin.ErrPluginContract)
	assert.Contains(t, err.Error(), "did not return controls")
	assert.Contains(t, err.Error(), "div#x")

	el := doc.Root().QueryAttr("data-wok-test1")[0]
	assert.Empty(t, el.Classes(), "failed elements are not marked")
}

func TestInit_FactoryError(t *testing.T) {
	b := newTestBroker(t)
	boom := errors.New("boom")
	require.NoError(t, b.UseFactory("test1", func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		return nil, boom
	}))

	err := b.Init(parse(t, `<div data-wok-test1></div>`).Root())
	assert.ErrorIs(t, err, boom)
}

func TestInit_RequestImmediately(t *testing.T) {
	b := newTestBroker(t)

	var providerCalls [][]any
	require.NoError(t, b.Provide("in", func(options ...any) (any, error) {
		providerCalls = append(providerCalls, options)
		return "data", nil
	}, false))

	require.NoError(t, b.UseFactory("test1", func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		return &plugin.Controls{RequestImmediately: true, Render: func(values ...any) {}}, nil
	}))

	require.NoError(t, b.Init(parse(t, `<div data-wok-test1="in/out"></div>`).Root()))

	require.Len(t, providerCalls, 1)
	assert.Empty(t, providerCalls[0])

	// The output side was accepted through the flag, but has no function to
	// serve requests with.
	_, err := b.Request("out")
	assert.ErrorIs(t, err, plugin.ErrPluginContract)
}

func TestInit_RenderImmediately(t *testing.T) {
	b := newTestBroker(t)

	renders := 0
	var got []any
	b.Subscribe("out", func(values ...any) {
		renders++
		got = values
	})

	require.NoError(t, b.UseFactory("test1", func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		return &plugin.Controls{RenderImmediately: true, Request: func(options ...any) (any, error) { return 7, nil }}, nil
	}))

	require.NoError(t, b.Init(parse(t, `<div data-wok-test1="/out"></div>`).Root()))
	assert.Equal(t, 1, renders)
	assert.Empty(t, got)

	v, err := b.Request("out")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestInit_ImmediateRequestWithoutProvider(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.UseFactory("test1", func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		return &plugin.Controls{RequestImmediately: true, Render: func(values ...any) {}}, nil
	}))

	err := b.Init(parse(t, `<div data-wok-test1="in"></div>`).Root())
	assert.ErrorIs(t, err, pipe.ErrNoProvider)
}

func TestInit_DuplicateOutput(t *testing.T) {
	b := newTestBroker(t)
	var calls []factoryCall
	require.NoError(t, b.UseFactory("src", recorder(&calls, func() *plugin.Controls {
		return &plugin.Controls{Request: func(options ...any) (any, error) { return nil, nil }}
	})))

	doc := parse(t, `<p id="one" data-wok-src="/shared"></p><p id="two" data-wok-src="/shared"></p>`)
	err := b.Init(doc.Root())
	require.Error(t, err)
	assert.ErrorIs(t, err, pipe.ErrDuplicateProvider)
	assert.Contains(t, err.Error(), "p#two")

	assert.Len(t, calls, 1, "the second factory must not run")
	els := doc.Root().QueryAttr("data-wok-src")
	assert.Equal(t, []string{"wok-src"}, els[0].Classes(), "elements bound before the failure stay bound")
	assert.Empty(t, els[1].Classes())
}

func TestInit_MixedCasePluginName(t *testing.T) {
	b := newTestBroker(t)
	var calls []factoryCall
	require.NoError(t, b.UseFactory("myPlugin", recorder(&calls, emptyControls)))

	doc := parse(t, `<div id="a" data-wok-myPlugin=""></div><div id="b" data-wok-myplugin></div>`)
	require.NoError(t, b.Init(doc.Root()))
	require.Len(t, calls, 2)
	assert.Equal(t, "div#a", calls[0].el.String())
	assert.Equal(t, "div#b", calls[1].el.String())
	assert.Equal(t, []string{"wok-myPlugin"}, calls[0].el.Classes())
}

func TestInit_MalformedArguments(t *testing.T) {
	b := newTestBroker(t)
	var calls []factoryCall
	require.NoError(t, b.UseFactory("test1", recorder(&calls, emptyControls)))

	err := b.Init(parse(t, `<div data-wok-test1="//{1}"></div>`).Root())
	require.Error(t, err)
	assert.ErrorIs(t, err, descriptor.ErrSyntax)
	assert.Empty(t, calls)
}

func TestInit_DataFlow(t *testing.T) {
	b := newTestBroker(t)

	// The sink is bound first, so it is subscribed before the source renders.
	require.NoError(t, b.UseFactory("sink", func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		return &plugin.Controls{
			Render: func(values ...any) {
				v, err := st.Request()
				if err != nil {
					el.SetText("error: " + err.Error())
					return
				}
				el.SetText(v.(string))
			},
		}, nil
	}))

	require.NoError(t, b.UseFactory("source", func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		return &plugin.Controls{
			Request:           func(options ...any) (any, error) { return args[0].AsString(), nil },
			RenderImmediately: true,
		}, nil
	}))
	doc := parse(t, `<span id="src" data-wok-source='/greeting/"hello"'></span><span id="dst" data-wok-sink="greeting"></span>`)
	require.NoError(t, b.Init(doc.Root()))

	dst := doc.Root().QueryAttr("data-wok-sink")[0]
	assert.Equal(t, "hello", dst.Text())
	assert.Equal(t, []string{"sink", "source"}, b.Plugins())
}

func TestInit_PluginOrder(t *testing.T) {
	b := newTestBroker(t)
	var order []string
	track := func(name string) plugin.Factory {
		return func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
			order = append(order, name+"@"+el.String())
			return &plugin.Controls{}, nil
		}
	}
	require.NoError(t, b.UseFactory("b", track("b")))
	require.NoError(t, b.UseFactory("a", track("a")))

	doc := parse(t, `<i id="1" data-wok-a></i><i id="2" data-wok-b></i><i id="3" data-wok-a data-wok-b></i>`)
	require.NoError(t, b.Init(doc.Root()))

	assert.Equal(t, []string{"b@i#2", "b@i#3", "a@i#1", "a@i#3"}, order)
	assert.Equal(t, []string{"wok-b", "wok-a"}, doc.Root().QueryAttr("id")[2].Classes())
}

func TestInit_Reinitialise(t *testing.T) {
	b := newTestBroker(t)
	var calls []factoryCall
	require.NoError(t, b.UseFactory("test1", recorder(&calls, func() *plugin.Controls {
		return &plugin.Controls{Render: func(values ...any) {}}
	})))

	doc := parse(t, `<div data-wok-test1="in"></div>`)
	require.NoError(t, b.Init(doc.Root()))
	require.NoError(t, b.Init(doc.Root()))

	assert.Len(t, calls, 2)
	assert.Equal(t, 2, b.Describe("in").Destinations)
	assert.Equal(t, []string{"wok-test1", "wok-test1"}, calls[1].el.Classes())
}

func TestInit_CustomPrefixAndDisabledClass(t *testing.T) {
	cfg, err := ConfigFromValues(map[string]cty.Value{
		KeyPluginPrefix: cty.StringVal("x-"),
		KeyPluginClass:  cty.NullVal(cty.String),
	})
	require.NoError(t, err)

	b := New(cfg)
	var calls []factoryCall
	require.NoError(t, b.UseFactory("p", recorder(&calls, emptyControls)))

	doc := parse(t, `<div data-wok-p></div><div id="hit" data-x-p></div>`)
	require.NoError(t, b.Init(doc.Root()))

	require.Len(t, calls, 1)
	assert.Equal(t, "div#hit", calls[0].el.String())
	assert.Empty(t, calls[0].el.Classes())
}

func TestUse_Resolution(t *testing.T) {
	shared := registry.New()
	var calls []factoryCall
	shared.Register("shared", recorder(&calls, emptyControls))

	b := newTestBroker(t, WithRegistry(shared))

	require.NoError(t, b.Use("shared"))
	err := b.Use("nope")
	assert.ErrorIs(t, err, plugin.ErrUnknownPlugin)

	require.NoError(t, b.UseAlias("alias", "shared"))
	err = b.UseAlias("other", "nope")
	assert.ErrorIs(t, err, plugin.ErrUnknownPlugin)

	err = b.UseFactory("nil", nil)
	assert.ErrorIs(t, err, plugin.ErrUnknownPlugin)

	assert.Equal(t, []string{"shared", "alias"}, b.Plugins())

	doc := parse(t, `<b data-wok-alias></b>`)
	require.NoError(t, b.Init(doc.Root()))
	assert.Len(t, calls, 1)
	assert.Equal(t, []string{"wok-alias"}, calls[0].el.Classes())
}

func TestUse_NilSharedFactory(t *testing.T) {
	shared := registry.New()
	shared.Register("ghost", nil)

	b := newTestBroker(t, WithRegistry(shared))
	assert.ErrorIs(t, b.Use("ghost"), plugin.ErrUnknownPlugin)
	assert.NoError(t, b.Init(parse(t, `<i data-wok-ghost></i>`).Root()))
}

func TestUse_WithoutRegistry(t *testing.T) {
	b := newTestBroker(t)
	assert.ErrorIs(t, b.Use("anything"), plugin.ErrUnknownPlugin)
}

func TestUse_SharedAcrossBrokers(t *testing.T) {
	shared := registry.New()
	var calls []factoryCall
	shared.Register("p", recorder(&calls, emptyControls))

	b1 := newTestBroker(t, WithRegistry(shared))
	b2 := newTestBroker(t, WithRegistry(shared))
	require.NoError(t, b1.Use("p"))
	require.NoError(t, b2.Use("p"))

	require.NoError(t, b1.Init(parse(t, `<i data-wok-p></i>`).Root()))
	require.NoError(t, b2.Init(parse(t, `<i data-wok-p></i>`).Root()))
	assert.Len(t, calls, 2)

	shared.Reset()
	b3 := newTestBroker(t, WithRegistry(shared))
	assert.ErrorIs(t, b3.Use("p"), plugin.ErrUnknownPlugin)
}

func TestRegister(t *testing.T) {
	b := newTestBroker(t)

	var rendered []any
	st, err := b.Register(StageSpec{
		Input:    "in",
		OnInput:  func(values ...any) { rendered = values },
		Output:   "out",
		OnOutput: func(options ...any) (any, error) { return "served", nil },
	})
	require.NoError(t, err)
	assert.Equal(t, "in", st.InputName())
	assert.Equal(t, "out", st.OutputName())

	b.Render("in", 1, 2)
	assert.Equal(t, []any{1, 2}, rendered)

	v, err := b.Request("out")
	require.NoError(t, err)
	assert.Equal(t, "served", v)

	_, err = b.Register(StageSpec{Output: "out", OnOutput: func(options ...any) (any, error) { return nil, nil }})
	assert.ErrorIs(t, err, pipe.ErrDuplicateProvider)
}

func TestRegister_FailedOutputKeepsInput(t *testing.T) {
	b := newTestBroker(t)
	provide := func(options ...any) (any, error) { return nil, nil }
	_, err := b.Register(StageSpec{Output: "out", OnOutput: provide})
	require.NoError(t, err)

	var rendered int
	_, err = b.Register(StageSpec{
		Input:    "in",
		OnInput:  func(values ...any) { rendered++ },
		Output:   "out",
		OnOutput: provide,
	})
	require.ErrorIs(t, err, pipe.ErrDuplicateProvider)

	assert.Equal(t, pipe.Snapshot{Name: "in", Destinations: 1}, b.Describe("in"))
	b.Render("in")
	assert.Equal(t, 1, rendered)
}

func TestDebugOption(t *testing.T) {
	var buf bytes.Buffer
	b := New(DefaultConfig(),
		WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		WithDebug(true),
	)
	assert.True(t, b.Debug())

	b.Render("p", "x")
	assert.Contains(t, buf.String(), "Rendering pipe.")
}

func TestConfigFromValues(t *testing.T) {
	cfg, err := ConfigFromValues(nil)
	require.NoError(t, err)
	assert.Equal(t, "wok-", cfg.PluginPrefix)
	require.NotNil(t, cfg.PluginClass)
	assert.Equal(t, "wok-", *cfg.PluginClass)
	assert.Equal(t, "data-wok-test1", cfg.AttributeName("test1"))
	assert.Equal(t, "data-wok-myplugin", cfg.AttributeName("myPlugin"))
	class, ok := cfg.MarkerClass("test1")
	assert.True(t, ok)
	assert.Equal(t, "wok-test1", class)

	cfg, err = ConfigFromValues(map[string]cty.Value{
		KeyPluginClass: cty.StringVal("bound-"),
		"theme":        cty.StringVal("dark"),
	})
	require.NoError(t, err)
	class, _ = cfg.MarkerClass("x")
	assert.Equal(t, "bound-x", class)
	assert.True(t, cfg.Extra["theme"].RawEquals(cty.StringVal("dark")))

	values := cfg.Values()
	assert.True(t, values[KeyPluginPrefix].RawEquals(cty.StringVal("wok-")))
	assert.True(t, values[KeyPluginClass].RawEquals(cty.StringVal("bound-")))
	assert.True(t, values["theme"].RawEquals(cty.StringVal("dark")))

	_, err = ConfigFromValues(map[string]cty.Value{KeyPluginPrefix: cty.NullVal(cty.String)})
	assert.Error(t, err)

	_, err = ConfigFromValues(map[string]cty.Value{KeyPluginClass: cty.ListValEmpty(cty.String)})
	assert.Error(t, err)

	cfg, err = ConfigFromValues(map[string]cty.Value{KeyPluginClass: cty.NullVal(cty.String)})
	require.NoError(t, err)
	_, ok = cfg.MarkerClass("x")
	assert.False(t, ok)
	assert.True(t, cfg.Values()[KeyPluginClass].IsNull())
}
