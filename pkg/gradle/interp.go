package gradle

import (
	"maps"
	"regexp"
	"strings"

	"github.com/albertocavalcante/gradledeps/internal/log"
)

// parseConfig holds per-parse inputs.
type parseConfig struct {
	path       string
	properties map[string]string
	catalog    *Catalog
}

// ParseOption configures a parse.
type ParseOption func(*parseConfig)

// WithPath sets the script path used in results and error messages.
func WithPath(path string) ParseOption {
	return func(c *parseConfig) {
		c.path = path
	}
}

// WithProperties seeds the properties visible to the script, such as
// gradle.properties entries or ext properties inherited from the root project.
func WithProperties(props map[string]string) ParseOption {
	return func(c *parseConfig) {
		c.properties = props
	}
}

// WithCatalog resolves version-catalog accessors against c.
func WithCatalog(c *Catalog) ParseOption {
	return func(cfg *parseConfig) {
		cfg.catalog = c
	}
}

func newParseConfig(opts []ParseOption) parseConfig {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

type scopeKind int

const (
	scopeProject scopeKind = iota
	scopeDependencies
	scopePlugins
	scopeRepositories
	scopeExt
)

type scope struct {
	kind       scopeKind
	path       []string
	top        bool
	constraint bool
}

func (s scope) enter(kind scopeKind, name string) scope {
	return scope{
		kind:       kind,
		path:       append(append([]string(nil), s.path...), name),
		constraint: s.constraint,
	}
}

func (s scope) block() string { return strings.Join(s.path, ".") }

// interpreter walks grouped statements and records what they declare.
type interpreter struct {
	dialect  Dialect
	cfg      parseConfig
	props    map[string]string
	declared map[string]string
	script   *BuildScript
	settings *Settings
}

func newInterpreter(dialect Dialect, cfg parseConfig) *interpreter {
	props := make(map[string]string, len(cfg.properties))
	maps.Copy(props, cfg.properties)
	return &interpreter{
		dialect:  dialect,
		cfg:      cfg,
		props:    props,
		declared: make(map[string]string),
	}
}

// interpretScript builds a BuildScript from a grouped token tree.
func interpretScript(root *node, dialect Dialect, cfg parseConfig) *BuildScript {
	in := newInterpreter(dialect, cfg)
	in.script = &BuildScript{Path: cfg.path, Dialect: dialect}
	in.walk(root, scope{kind: scopeProject, top: true})
	if len(in.declared) > 0 {
		in.script.Properties = in.declared
	}
	return in.script
}

// interpretSettings builds Settings from a grouped token tree.
func interpretSettings(root *node, dialect Dialect, cfg parseConfig) *Settings {
	in := newInterpreter(dialect, cfg)
	in.settings = &Settings{Path: cfg.path}
	for _, nodes := range statements(root.children) {
		in.settingsStmt(parseStatement(nodes, dialect))
	}
	return in.settings
}

func (in *interpreter) walk(block *node, sc scope) {
	if block == nil || in.script == nil {
		return
	}
	for _, nodes := range statements(block.children) {
		in.statement(parseStatement(nodes, in.dialect), sc)
	}
}

func (in *interpreter) statement(st statement, sc scope) {
	switch st.kind {
	case stmtDecl:
		in.declare(st, sc)
		return
	case stmtAssign:
		in.assign(st, sc)
		return
	}

	switch sc.kind {
	case scopeProject:
		in.projectStmt(st.expr, sc)
	case scopeDependencies:
		in.dependencyStmt(st.expr, sc)
	case scopePlugins:
		in.pluginStmt(st.expr)
	case scopeRepositories:
		in.repositoryStmt(st.expr, sc)
	case scopeExt:
		if call, ok := st.expr.(*callExpr); ok && calleeName(call) == "set" {
			in.setFromArgs(call)
		}
	}
}

func (in *interpreter) setProp(name, value string) {
	in.props[name] = value
	in.declared[name] = value
}

// declare handles def/val/var locals, including "val x by extra(...)".
func (in *interpreter) declare(st statement, sc scope) {
	value := st.value
	if value == nil {
		return
	}
	if st.delegated {
		call, ok := value.(*callExpr)
		if !ok {
			return
		}
		args := call.positional()
		if isExtraName(calleeName(call)) && len(args) > 0 {
			value = args[0]
		} else {
			// val main by getting { dependencies { ... } }
			if call.closure != nil {
				in.walk(call.closure, sc.enter(scopeProject, st.name))
			}
			return
		}
	}
	if v, ok := in.eval(value); ok {
		in.setProp(st.name, v)
	}
}

func (in *interpreter) assign(st statement, sc scope) {
	value, ok := in.eval(st.value)
	if !ok {
		return
	}

	if idx, isIndex := st.expr.(*indexExpr); isIndex {
		base, _ := dotted(idx.target)
		if isExtraName(base) {
			if key, kok := in.eval(idx.index); kok {
				in.setProp(key, value)
			}
		}
		return
	}

	name, isDotted := dotted(st.expr)
	if !isDotted {
		return
	}
	if sc.kind == scopeExt {
		in.setProp(name, value)
		return
	}
	if key, isExt := extKey(name); isExt {
		in.setProp(key, value)
		return
	}
	if sc.kind == scopeProject && sc.top && in.script != nil {
		switch strings.TrimPrefix(name, "project.") {
		case "group":
			in.script.Group = value
			in.setProp("group", value)
		case "version":
			in.script.Version = value
			in.setProp("version", value)
		}
	}
}

// setFromArgs handles ext.set("x", v) and extra.set("x", v).
func (in *interpreter) setFromArgs(call *callExpr) {
	args := call.positional()
	if len(args) < 2 {
		return
	}
	key, kok := in.eval(args[0])
	value, vok := in.eval(args[1])
	if kok && vok {
		in.setProp(key, value)
	}
}

func (in *interpreter) projectStmt(e expr, sc scope) {
	call, ok := e.(*callExpr)
	if !ok {
		return
	}
	name := calleeName(call)
	switch name {
	case "plugins":
		in.walk(call.closure, sc.enter(scopePlugins, name))
	case "dependencies":
		in.walk(call.closure, sc.enter(scopeDependencies, name))
	case "repositories":
		in.walk(call.closure, sc.enter(scopeRepositories, name))
	case "ext", "extra", "project.ext", "rootProject.ext":
		in.walk(call.closure, sc.enter(scopeExt, name))
	case "ext.set", "extra.set", "project.ext.set", "project.extra.set", "rootProject.extra.set":
		in.setFromArgs(call)
	case "apply":
		arg := call.named("plugin")
		id, ok := in.eval(arg)
		if !ok {
			// apply plugin: com.example.SomePlugin
			id, ok = dotted(arg)
		}
		if ok && id != "" {
			in.script.Plugins = append(in.script.Plugins, Plugin{ID: id, Apply: true, Location: call.pos().location()})
		}
	case "group", "version":
		// Groovy setter form: group 'com.example'
		if args := call.positional(); sc.top && len(args) == 1 {
			if v, ok := in.eval(args[0]); ok {
				in.setProp(name, v)
				if name == "group" {
					in.script.Group = v
				} else {
					in.script.Version = v
				}
			}
		}
	default:
		if call.closure == nil {
			return
		}
		block := name
		if name == "project" {
			if args := call.positional(); len(args) > 0 {
				if p, ok := in.eval(args[0]); ok {
					block = "project(" + p + ")"
				}
			}
		}
		if block == "" {
			block = "<closure>"
		}
		in.walk(call.closure, sc.enter(scopeProject, block))
	}
}

// -----------------------------------------------------------------------------
// Plugins
// -----------------------------------------------------------------------------

func (in *interpreter) pluginStmt(e expr) {
	version, apply := "", true
	setModifier := func(name string, arg expr) {
		switch name {
		case "version":
			if v, ok := in.eval(arg); ok {
				version = v
			}
		case "apply":
			if v, ok := in.eval(arg); ok {
				apply = v != "false"
			}
		}
	}

	// id("x") version "1" apply false
	for inf, ok := e.(*infixExpr); ok; inf, ok = e.(*infixExpr) {
		setModifier(inf.name, inf.right)
		e = inf.left
	}
	// id("x").version("1").apply(false)
	for {
		call, ok := e.(*callExpr)
		if !ok {
			break
		}
		sel, ok := call.callee.(*selectorExpr)
		if !ok || (sel.name != "version" && sel.name != "apply") {
			break
		}
		if _, isCall := sel.target.(*callExpr); !isCall {
			break
		}
		if args := call.positional(); len(args) > 0 {
			setModifier(sel.name, args[0])
		}
		e = sel.target
	}

	p := Plugin{Apply: true, Location: e.pos().location()}
	switch e := e.(type) {
	case *callExpr:
		args := e.positional()
		if len(args) == 0 {
			return
		}
		switch calleeName(e) {
		case "id":
			p.ID, _ = in.eval(args[0])
		case "kotlin":
			if m, ok := in.eval(args[0]); ok {
				p.ID = "org.jetbrains.kotlin." + m
			}
		case "alias":
			ref, ok := dotted(args[0])
			if !ok {
				return
			}
			p.CatalogRef = ref
			p.ID = ref
			if cp, found := in.cfg.catalog.Plugin(ref); found {
				p.ID, p.Version = cp.ID, cp.Version
			}
		}
	case *identExpr, *selectorExpr:
		p.ID, _ = dotted(e)
	}
	if p.ID == "" {
		return
	}
	if version != "" {
		p.Version = version
	}
	p.Apply = apply
	in.script.Plugins = append(in.script.Plugins, p)
}

// -----------------------------------------------------------------------------
// Repositories
// -----------------------------------------------------------------------------

var knownRepositories = map[string]string{
	"mavenCentral":       "https://repo.maven.apache.org/maven2/",
	"google":             "https://dl.google.com/dl/android/maven2/",
	"gradlePluginPortal": "https://plugins.gradle.org/m2/",
	"jcenter":            "https://jcenter.bintray.com/",
	"mavenLocal":         "",
}

func (in *interpreter) repositoryStmt(e expr, sc scope) {
	call, ok := e.(*callExpr)
	if !ok {
		return
	}
	name := calleeName(call)
	repo := Repository{Name: name, Block: sc.block(), Location: call.pos().location()}

	if url, known := knownRepositories[name]; known {
		repo.URL = url
		in.script.Repositories = append(in.script.Repositories, repo)
		return
	}
	if name != "maven" && name != "ivy" {
		if call.closure != nil {
			in.walk(call.closure, sc.enter(scopeRepositories, name))
		}
		return
	}

	if args := call.positional(); len(args) > 0 {
		repo.URL, _ = in.eval(args[0])
	}
	if url := call.named("url"); url != nil {
		repo.URL, _ = in.eval(url)
	}
	if call.closure != nil {
		for _, nodes := range statements(call.closure.children) {
			st := parseStatement(nodes, in.dialect)
			target, value := st.expr, st.value
			if st.kind == stmtExpr {
				c, isCall := st.expr.(*callExpr)
				if !isCall || len(c.positional()) == 0 {
					continue
				}
				target, value = c.callee, c.positional()[0]
			}
			v, ok := in.eval(value)
			if !ok {
				continue
			}
			switch n, _ := dotted(target); n {
			case "url", "setUrl":
				repo.URL = v
			case "name":
				repo.Name = v
			}
		}
	}
	in.script.Repositories = append(in.script.Repositories, repo)
}

// -----------------------------------------------------------------------------
// Dependencies
// -----------------------------------------------------------------------------

// Calls inside a dependencies block that are not configurations.
var nonConfigurations = map[string]bool{
	"components":        true,
	"modules":           true,
	"attributesSchema":  true,
	"artifactTypes":     true,
	"registerTransform": true,
	"if":                true,
	"else":              true,
	"for":               true,
	"println":           true,
}

func (in *interpreter) dependencyStmt(e expr, sc scope) {
	var because string
	for inf, ok := e.(*infixExpr); ok; inf, ok = e.(*infixExpr) {
		if inf.name == "because" {
			because, _ = in.eval(inf.right)
		}
		e = inf.left
	}

	call, ok := e.(*callExpr)
	if !ok {
		return
	}
	name := calleeName(call)
	if name == "constraints" {
		inner := sc.enter(scopeDependencies, name)
		inner.constraint = true
		in.walk(call.closure, inner)
		return
	}
	if nonConfigurations[name] {
		if call.closure != nil && (name == "if" || name == "else") {
			in.walk(call.closure, sc)
		}
		return
	}

	conf := name
	args := call.args
	if name == "add" {
		pos := call.positional()
		if len(pos) < 2 {
			return
		}
		c, ok := in.eval(pos[0])
		if !ok {
			return
		}
		conf = c
		args = []argument{{value: pos[1]}}
	}
	if conf == "" || strings.ContainsAny(conf, ". ") {
		return
	}

	base := Dependency{
		Configuration: conf,
		Block:         sc.block(),
		Constraint:    sc.constraint,
		Location:      call.pos().location(),
		Because:       because,
	}

	var deps []Dependency
	if hasNamed(args) {
		deps = in.mapNotation(args, base)
	} else {
		for _, a := range args {
			deps = append(deps, in.notation(a.value, base)...)
		}
	}
	if len(deps) == 0 {
		log.Trace("no dependency notation recognized", "path", in.cfg.path, "configuration", conf,
			"line", base.Location.Line)
		return
	}
	if call.closure != nil {
		in.dependencyClosure(call.closure, deps)
	}
	in.script.Dependencies = append(in.script.Dependencies, deps...)
}

func (in *interpreter) notation(e expr, base Dependency) []Dependency {
	switch e := e.(type) {
	case *callExpr:
		args := e.positional()
		switch calleeName(e) {
		case "platform", "enforcedPlatform":
			if len(args) == 0 {
				return nil
			}
			base.Platform = true
			return in.notation(args[0], base)
		case "testFixtures", "variantOf":
			if len(args) == 0 {
				return nil
			}
			return in.notation(args[0], base)
		case "project":
			base.Notation = NotationProject
			if p := e.named("path"); p != nil {
				base.Project, _ = in.eval(p)
			} else if len(args) > 0 {
				base.Project, _ = in.eval(args[0])
			}
			return []Dependency{base}
		case "kotlin":
			if len(args) == 0 {
				return nil
			}
			module, ok := in.eval(args[0])
			if !ok {
				return nil
			}
			base.Notation = NotationKotlin
			base.Coordinate = Coordinate{Group: "org.jetbrains.kotlin", Artifact: "kotlin-" + module}
			if len(args) > 1 {
				base.Coordinate.Version, _ = in.eval(args[1])
			}
			return []Dependency{base}
		case "files", "fileTree":
			base.Notation = NotationFiles
			return []Dependency{base}
		case "gradleApi", "localGroovy", "gradleTestKit":
			base.Notation = NotationGradleAPI
			return []Dependency{base}
		}
		if sel, ok := e.callee.(*selectorExpr); ok && (sel.name == "get" || sel.name == "asProvider") {
			return in.notation(sel.target, base)
		}
		return nil
	case *listExpr:
		if hasNamed(e.items) {
			return in.mapNotation(e.items, base)
		}
		var out []Dependency
		for _, item := range e.items {
			out = append(out, in.notation(item.value, base)...)
		}
		return out
	case *identExpr, *selectorExpr:
		name, _ := dotted(e)
		if strings.HasPrefix(name, in.catalogName()+".") {
			return in.catalogNotation(name, base)
		}
		if v, ok := in.lookup(name); ok {
			return in.stringNotation(v, base)
		}
		return nil
	default:
		v, ok := in.eval(e)
		if !ok {
			return nil
		}
		return in.stringNotation(v, base)
	}
}

func (in *interpreter) stringNotation(s string, base Dependency) []Dependency {
	coord, err := ParseCoordinate(s)
	if err != nil {
		log.Trace("skipping dependency string", "path", in.cfg.path, "value", s, "error", err)
		return nil
	}
	base.Notation = NotationString
	base.Coordinate = coord
	return []Dependency{base}
}

func (in *interpreter) mapNotation(args []argument, base Dependency) []Dependency {
	get := func(names ...string) string {
		for _, n := range names {
			if v, ok := in.eval(namedArg(args, n)); ok {
				return v
			}
		}
		return ""
	}
	base.Coordinate = Coordinate{
		Group:      get("group"),
		Artifact:   get("name", "module"),
		Version:    get("version"),
		Classifier: get("classifier"),
		Extension:  get("ext", "extension"),
	}
	if base.Coordinate.Artifact == "" {
		return nil
	}
	base.Notation = NotationMap
	return []Dependency{base}
}

func (in *interpreter) catalogName() string {
	if in.cfg.catalog != nil && in.cfg.catalog.Name != "" {
		return in.cfg.catalog.Name
	}
	return DefaultCatalogName
}

func (in *interpreter) catalogNotation(ref string, base Dependency) []Dependency {
	base.Notation = NotationCatalog
	base.CatalogRef = ref
	coords, ok := in.cfg.catalog.Resolve(ref)
	if !ok {
		return []Dependency{base}
	}
	out := make([]Dependency, 0, len(coords))
	for _, c := range coords {
		d := base
		d.Coordinate = c
		out = append(out, d)
	}
	return out
}

// dependencyClosure applies exclude, version and because from a trailing
// closure to every declaration of the statement.
func (in *interpreter) dependencyClosure(block *node, deps []Dependency) {
	for _, nodes := range statements(block.children) {
		st := parseStatement(nodes, in.dialect)
		call, ok := st.expr.(*callExpr)
		if st.kind != stmtExpr || !ok {
			continue
		}
		switch calleeName(call) {
		case "exclude":
			var ex Exclude
			ex.Group, _ = in.eval(call.named("group"))
			ex.Module, _ = in.eval(call.named("module"))
			if ex.Group == "" && ex.Module == "" {
				continue
			}
			for i := range deps {
				deps[i].Excludes = append(deps[i].Excludes, ex)
			}
		case "version":
			if call.closure == nil {
				continue
			}
			v := in.richVersion(call.closure)
			for i := range deps {
				if v != "" && deps[i].Coordinate.Version == "" {
					deps[i].Coordinate.Version = v
				}
			}
		case "because":
			if args := call.positional(); len(args) > 0 {
				reason, _ := in.eval(args[0])
				for i := range deps {
					deps[i].Because = reason
				}
			}
		}
	}
}

// richVersion reads version { strictly/require/prefer '1.0' }.
func (in *interpreter) richVersion(block *node) string {
	found := map[string]string{}
	for _, nodes := range statements(block.children) {
		st := parseStatement(nodes, in.dialect)
		call, ok := st.expr.(*callExpr)
		if !ok {
			continue
		}
		if args := call.positional(); len(args) > 0 {
			if v, ok := in.eval(args[0]); ok {
				found[calleeName(call)] = v
			}
		}
	}
	for _, key := range []string{"strictly", "require", "prefer"} {
		if v := found[key]; v != "" {
			return v
		}
	}
	return ""
}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

func (in *interpreter) settingsStmt(st statement) {
	switch st.kind {
	case stmtDecl:
		in.declare(st, scope{kind: scopeProject})
		return
	case stmtAssign:
		v, ok := in.eval(st.value)
		if !ok {
			return
		}
		if name, isDotted := dotted(st.expr); isDotted && name == "rootProject.name" {
			in.settings.RootProjectName = v
			return
		}
		// project(':x').projectDir = file('x')
		if sel, isSel := st.expr.(*selectorExpr); isSel && sel.name == "projectDir" {
			if call, isCall := sel.target.(*callExpr); isCall && calleeName(call) == "project" {
				if args := call.positional(); len(args) > 0 {
					if p, ok := in.eval(args[0]); ok {
						if in.settings.ProjectDirs == nil {
							in.settings.ProjectDirs = make(map[string]string)
						}
						in.settings.ProjectDirs[normalizeProjectPath(p)] = v
					}
				}
			}
		}
		return
	}

	call, ok := st.expr.(*callExpr)
	if !ok || calleeName(call) != "include" {
		return
	}
	var add func(e expr)
	add = func(e expr) {
		if list, isList := e.(*listExpr); isList {
			for _, item := range list.items {
				add(item.value)
			}
			return
		}
		if p, ok := in.eval(e); ok && strings.TrimSpace(p) != "" {
			in.settings.Includes = append(in.settings.Includes, normalizeProjectPath(p))
		}
	}
	for _, a := range call.positional() {
		add(a)
	}
}

func normalizeProjectPath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, ":") {
		p = ":" + p
	}
	return p
}

// -----------------------------------------------------------------------------
// Evaluation
// -----------------------------------------------------------------------------

// eval reduces an expression to a string when it is a literal, a known
// property or a simple combination of those.
func (in *interpreter) eval(e expr) (string, bool) {
	switch e := e.(type) {
	case nil:
		return "", false
	case *stringExpr:
		return in.interpolate(e), true
	case *literalExpr:
		if e.text == "" || e.text == "()" {
			return "", false
		}
		return e.text, true
	case *identExpr, *selectorExpr:
		name, _ := dotted(e)
		switch name {
		case "true", "false", "null":
			return name, true
		}
		if v, ok := in.cfg.catalog.Version(name); ok {
			return v, true
		}
		return in.lookup(name)
	case *binaryExpr:
		switch e.op {
		case "+":
			if e.left == nil {
				return in.eval(e.right)
			}
			l, lok := in.eval(e.left)
			r, rok := in.eval(e.right)
			if lok && rok {
				return l + r, true
			}
		case "?:":
			if l, ok := in.eval(e.left); ok && l != "null" {
				return l, true
			}
			return in.eval(e.right)
		}
		return "", false
	case *infixExpr:
		if e.name == "as" {
			return in.eval(e.left)
		}
		return "", false
	case *indexExpr:
		base, _ := dotted(e.target)
		if isExtraName(base) || strings.HasSuffix(base, "properties") {
			if key, ok := in.eval(e.index); ok {
				return in.lookup(key)
			}
		}
		return "", false
	case *callExpr:
		args := e.positional()
		switch name := calleeName(e); name {
		case "uri", "file", "mavenBom":
			if len(args) > 0 {
				return in.eval(args[0])
			}
		case "property", "findProperty", "project.property", "project.findProperty",
			"rootProject.property", "rootProject.findProperty", "providers.gradleProperty",
			"extra.get", "ext.get", "project.extra.get", "rootProject.extra.get":
			if len(args) > 0 {
				if key, ok := in.eval(args[0]); ok {
					return in.lookup(key)
				}
			}
			return "", false
		}
		if sel, ok := e.callee.(*selectorExpr); ok {
			switch sel.name {
			case "get", "toString", "trim", "getOrNull", "asProvider":
				return in.eval(sel.target)
			}
		}
		return "", false
	default:
		return "", false
	}
}

// lookup resolves a property reference, ignoring project/rootProject and
// ext/extra qualifiers.
func (in *interpreter) lookup(name string) (string, bool) {
	if v, ok := in.props[name]; ok {
		return v, true
	}
	n := stripProjectPrefix(name)
	if key, ok := extKey(n); ok {
		n = key
	}
	v, ok := in.props[n]
	return v, ok
}

var simpleTemplate = regexp.MustCompile(`^[A-Za-z_][\w]*(\.[A-Za-z_][\w]*)*$`)

func (in *interpreter) interpolate(s *stringExpr) string {
	var b strings.Builder
	for _, p := range s.parts {
		if !p.isExpr {
			b.WriteString(p.lit)
			continue
		}
		if v, ok := in.templateValue(p.expr); ok {
			b.WriteString(v)
			continue
		}
		if p.braced {
			b.WriteString("${" + p.expr + "}")
		} else {
			b.WriteString("$" + p.expr)
		}
	}
	return b.String()
}

func (in *interpreter) templateValue(src string) (string, bool) {
	if simpleTemplate.MatchString(src) {
		return in.eval(&identExpr{name: src})
	}
	toks, err := lex(src, in.dialect, in.cfg.path)
	if err != nil {
		return "", false
	}
	root, err := group(toks, in.dialect, in.cfg.path)
	if err != nil || len(root.children) == 0 {
		return "", false
	}
	return in.eval(newExprParser(root.children, in.dialect).parseExpr(parseFlags{}))
}

func stripProjectPrefix(name string) string {
	for _, prefix := range []string{"project.", "rootProject."} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			return rest
		}
	}
	return name
}

// extKey returns "x" for ext.x, extra.x and their project-qualified forms.
func extKey(name string) (string, bool) {
	name = stripProjectPrefix(name)
	for _, prefix := range []string{"ext.", "extra.", "extensions.extraProperties."} {
		if rest, ok := strings.CutPrefix(name, prefix); ok && rest != "" {
			return rest, true
		}
	}
	return "", false
}

func isExtraName(name string) bool {
	switch stripProjectPrefix(name) {
	case "ext", "extra", "extensions.extraProperties":
		return true
	}
	return false
}
