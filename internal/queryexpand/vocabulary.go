package queryexpand

// abbreviations maps a short form to the full words it stands for.
// Roughly 60 entries covering the abbreviations that show up in real
// symbol names across the languages the parser pool supports.
var abbreviations = map[string][]string{
	"auth":  {"authenticate", "authorization"},
	"cfg":   {"config", "configuration"},
	"cfgs":  {"configs", "configurations"},
	"ctx":   {"context"},
	"db":    {"database"},
	"repo":  {"repository"},
	"svc":   {"service"},
	"mgr":   {"manager"},
	"impl":  {"implementation"},
	"iface": {"interface"},
	"pkg":   {"package"},
	"mod":   {"module"},
	"lib":   {"library"},
	"util":  {"utility", "utilities"},
	"utils": {"utility", "utilities"},
	"req":   {"request"},
	"resp":  {"response"},
	"res":   {"response", "result", "resource"},
	"err":   {"error"},
	"msg":   {"message"},
	"param": {"parameter"},
	"args":  {"arguments"},
	"arg":   {"argument"},
	"env":   {"environment"},
	"dev":   {"development"},
	"prod":  {"production"},
	"tmp":   {"temporary"},
	"temp":  {"temporary"},
	"conn":  {"connection"},
	"txn":   {"transaction"},
	"tx":    {"transaction"},
	"idx":   {"index"},
	"cnt":   {"count"},
	"len":   {"length"},
	"num":   {"number"},
	"str":   {"string"},
	"val":   {"value"},
	"var":   {"variable"},
	"const": {"constant"},
	"obj":   {"object"},
	"arr":   {"array"},
	"ptr":   {"pointer"},
	"ref":   {"reference"},
	"addr":  {"address"},
	"buf":   {"buffer"},
	"bufs":  {"buffers"},
	"async": {"asynchronous"},
	"sync":  {"synchronous", "synchronize"},
	"auth0": {"authentication"},
	"jwt":   {"token"},
	"api":   {"interface"},
	"cli":   {"command", "line"},
	"ui":    {"interface"},
	"http":  {"hypertext", "transfer", "protocol"},
	"json":  {"notation"},
	"sql":   {"query", "language"},
	"fs":    {"filesystem"},
	"dir":   {"directory"},
	"ver":   {"version"},
	"init":  {"initialize", "initialization"},
	"cb":    {"callback"},
	"hdlr":  {"handler"},
	"opt":   {"option"},
	"opts":  {"options"},
	"qty":   {"quantity"},
	"attr":  {"attribute"},
	"attrs": {"attributes"},
	"bool":  {"boolean"},
	"calc":  {"calculate", "calculation"},
	"recv":  {"receive", "receiver"},
	"src":   {"source"},
	"dst":   {"destination"},
	"gen":   {"generate", "generator"},
}

// reverseAbbreviations is built once at package init: full word -> all
// abbreviations that expand to it, so a query for "configuration" also
// pulls in symbols named "cfg".
var reverseAbbreviations = buildReverseAbbreviations()

func buildReverseAbbreviations() map[string][]string {
	rev := make(map[string][]string, len(abbreviations))
	for short, fulls := range abbreviations {
		for _, full := range fulls {
			rev[full] = append(rev[full], short)
		}
	}
	return rev
}

// synonymGroups is roughly 20 clusters of terms treated as
// interchangeable for retrieval purposes: a query mentioning any
// member pulls in candidates named after the others.
var synonymGroups = [][]string{
	{"login", "signin", "authenticate", "auth"},
	{"logout", "signout"},
	{"create", "new", "make", "build", "construct"},
	{"delete", "remove", "destroy", "purge"},
	{"update", "modify", "edit", "patch", "change"},
	{"fetch", "get", "retrieve", "load", "read"},
	{"save", "store", "persist", "write"},
	{"find", "search", "lookup", "locate", "query"},
	{"validate", "verify", "check", "sanitize"},
	{"convert", "transform", "cast", "parse", "encode", "decode"},
	{"error", "exception", "failure", "fault"},
	{"start", "begin", "init", "open"},
	{"stop", "end", "close", "shutdown", "terminate"},
	{"handler", "callback", "listener", "observer"},
	{"manager", "controller", "coordinator"},
	{"client", "consumer", "caller"},
	{"server", "provider", "producer"},
	{"queue", "buffer", "channel", "stream"},
	{"worker", "job", "task"},
	{"config", "settings", "options", "preferences"},
}

// synonymIndex maps each term to every other member of its group(s),
// built once at init so Expand is a map lookup, not a scan.
var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string][]string {
	idx := make(map[string][]string)
	for _, group := range synonymGroups {
		for i, term := range group {
			for j, other := range group {
				if i == j {
					continue
				}
				idx[term] = append(idx[term], other)
			}
		}
	}
	return idx
}
