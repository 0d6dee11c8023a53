// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ProjectNotFoundId Id = iota + 1
	ProjectDescriptorInvalidId
	EntryPointNotFoundId
	ConfigLoadFailedId
	UnresolvedDependenciesId
	DependencyCycleId
	PackageInstallFailedId
	PostBuildFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as styled terminal markdown. stylePath is a
// glamour style name such as "dark" or "light".
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	projectNotFoundIssue = &Issue{
		id: ProjectNotFoundId,
		mdMsg: `
# Project not found!

The project directory does not exist or has no pryzma.json.

## Things you can try:
- Build the project in the current directory:
~~~
$ pryzma build .
~~~

- Check that the project exists in your projects directory:
~~~
$ pryzma config show
~~~

- Build a single file instead:
~~~
$ pryzma build -f main.pryzma
~~~`,
	}

	projectDescriptorInvalidIssue = &Issue{
		id: ProjectDescriptorInvalidId,
		mdMsg: `
# Invalid pryzma.json!

The project descriptor could not be read or has no entry point.

## Example pryzma.json:
~~~json
{
    "name": "hello",
    "type": "basic",
    "version": "0.1.0",
    "entry_point": "src/main.pryzma",
    "description": "My Pryzma project"
}
~~~`,
	}

	entryPointNotFoundIssue = &Issue{
		id: EntryPointNotFoundId,
		mdMsg: `
# Entry point not found!

The file named as the build entry point does not exist.

## Things you can try:
- Check the 'entry_point' field of pryzma.json (it is relative to the project directory)
- Check the path passed with -f`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config.cue has a syntax error or a value that does not match the schema.

## Things you can try:
- Print where the configuration is read from:
~~~
$ pryzma config path
~~~

- Regenerate a default file and compare:
~~~
$ pryzma config show
~~~`,
	}

	unresolvedDependenciesIssue = &Issue{
		id: UnresolvedDependenciesId,
		mdMsg: `
# Unresolved dependencies!

Some use or #insert directives name files that could not be found.

## Search order for a reference:
1. The directory of the referencing file
2. The project directory
3. The project's src directory
4. The packages directory (name::sub or name)

## Things you can try:
- Install missing packages automatically:
~~~
$ pryzma build . --auto-fetch
~~~

- Install a package explicitly:
~~~
$ pryzma ppm install <name>
~~~`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

Files reference each other in a loop. The bundle skips the nested
inclusion, which usually means definitions are missing at run time.

## Things you can try:
- Inspect the graph:
~~~
$ pryzma deps . --format dot | dot -Tsvg > deps.svg
~~~

- Move shared functions into a separate module used by both files`,
	}

	packageInstallFailedIssue = &Issue{
		id: PackageInstallFailedId,
		mdMsg: `
# Package installation failed!

No mirror could serve the package and the fallback repository does not contain it.

## Things you can try:
- Check the package name for typos
- Configure additional mirrors in config.cue:
~~~cue
ppm: mirrors: ["https://mirror.example.com/api"]
~~~`,
	}

	postBuildFailedIssue = &Issue{
		id: PostBuildFailedId,
		mdMsg: `
# Post-build command failed!

The bundle and manifest were written, but build.post_command exited with an error.

## Things you can try:
- Run the command manually from the project directory
- The command sees PRYZMA_BUNDLE, PRYZMA_MANIFEST and PRYZMA_PROJECT`,
	}

	issues = map[Id]*Issue{
		projectNotFoundIssue.Id():          projectNotFoundIssue,
		projectDescriptorInvalidIssue.Id(): projectDescriptorInvalidIssue,
		entryPointNotFoundIssue.Id():       entryPointNotFoundIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		unresolvedDependenciesIssue.Id():   unresolvedDependenciesIssue,
		dependencyCycleIssue.Id():          dependencyCycleIssue,
		packageInstallFailedIssue.Id():     packageInstallFailedIssue,
		postBuildFailedIssue.Id():          postBuildFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id - b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
