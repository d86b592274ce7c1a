package server

import (
	"html/template"
	"io"

	"github.com/Iron-Ham/buildview/internal/view"
)

type pageData struct {
	Title    string
	Snapshot view.Snapshot
	Panel    template.HTML
}

// renderPage writes the page around the current panel markup. The markup
// is produced by the view with every output byte already escaped.
func renderPage(w io.Writer, title string, snap view.Snapshot) error {
	return pageTemplate.Execute(w, pageData{
		Title:    title,
		Snapshot: snap,
		Panel:    template.HTML(snap.HTML), //nolint:gosec // escaped by render.HTML
	})
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: sans-serif; background: #1e1e1e; color: #ddd; height: 100vh; display: grid;
  grid-template-areas: "top top top" "left main right" "bottom bottom bottom";
  grid-template-rows: auto 1fr auto; grid-template-columns: auto 1fr auto; }
header { grid-area: main; padding: 1em; }
#view { display: contents; }
.build { background: #111; border: 1px solid #333; overflow: auto; max-height: 45vh; }
.build.panel-bottom { grid-area: bottom; }
.build.panel-top { grid-area: top; }
.build.panel-left { grid-area: left; width: 40vw; max-height: none; }
.build.panel-right { grid-area: right; width: 40vw; max-height: none; }
.build.hidden { display: none; }
.title { padding: 4px 8px; font-weight: bold; }
.title.running { color: #4ea1ff; }
.title.success { color: #5fd35f; }
.title.error { color: #ff5f5f; }
.title.stopped { color: #d7af5f; }
.output { margin: 0; padding: 4px 8px; font-family: monospace; white-space: pre-wrap; }
a.error-match { color: inherit; text-decoration: underline dotted; cursor: pointer; }
#location { font-family: monospace; }
</style>
</head>
<body data-build-id="{{.Snapshot.BuildID}}">
<header>
<button id="build">Build</button>
<button id="stop">Stop</button>
<select id="placement">
<option value="bottom">Bottom</option>
<option value="top">Top</option>
<option value="left">Left</option>
<option value="right">Right</option>
</select>
<span id="location"></span>
</header>
<div id="view">{{.Panel}}</div>
<script>
(function () {
  var view = document.getElementById("view");
  var location = document.getElementById("location");
  var pending = false;
  var dirty = false;

  function settle() {
    pending = false;
    if (dirty) { refresh(); }
  }

  function refresh() {
    if (pending) { dirty = true; return; }
    pending = true;
    dirty = false;
    window.requestAnimationFrame(function () {
      fetch("/api/state").then(function (r) { return r.json(); }).then(function (s) {
        view.innerHTML = s.html;
        var panel = view.querySelector(".build");
        if (panel && !s.visible) { panel.classList.add("hidden"); }
        settle();
      }, settle);
    });
  }

  function post(url, body, method) {
    return fetch(url, {
      method: method || "POST",
      headers: { "Content-Type": "application/json" },
      body: body ? JSON.stringify(body) : null
    }).then(function (r) { return r.json(); });
  }

  document.getElementById("build").onclick = function () { post("/api/build"); };
  document.getElementById("stop").onclick = function () { post("/api/stop"); };
  document.getElementById("placement").onchange = function (e) {
    post("/api/placement", { placement: e.target.value }, "PUT");
  };

  view.addEventListener("click", function (e) {
    var a = e.target.closest("a.error-match");
    if (!a) { return; }
    e.preventDefault();
    post("/api/links/" + encodeURIComponent(a.id)).then(function (act) {
      location.textContent = act.location || act.error || "";
    });
  });

  var events = new EventSource("/api/events");
  ["state", "build.started", "build.output", "build.finished", "build.stopped",
   "build.timer", "panel.changed"].forEach(function (name) {
    events.addEventListener(name, refresh);
  });
})();
</script>
</body>
</html>
`))
