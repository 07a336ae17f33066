package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// --- Mock implementations ---

type fileKey struct {
	repo string
	ref  string
	path string
}

type mockGitHubClient struct {
	mu sync.Mutex

	diff    string
	diffErr error

	// files maps repo/ref/path to content; missing entries answer ErrNotFound
	// unless fileErrs has an entry for them.
	files    map[fileKey][]byte
	fileErrs map[fileKey]error

	comments []model.ReviewComment
	listErr  error
	nextID   int64

	diffCalls   int
	fileCalls   []fileKey
	createCalls int
	editCalls   []int64
}

func newMockGitHubClient() *mockGitHubClient {
	return &mockGitHubClient{
		files:    make(map[fileKey][]byte),
		fileErrs: make(map[fileKey]error),
		nextID:   1000,
	}
}

func (m *mockGitHubClient) FetchDiff(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diffCalls++
	return m.diff, m.diffErr
}

func (m *mockGitHubClient) FetchFile(_ context.Context, repoHTMLURL, ref, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fileKey{repo: repoHTMLURL, ref: ref, path: path}
	m.fileCalls = append(m.fileCalls, key)
	if err, ok := m.fileErrs[key]; ok {
		return nil, err
	}
	content, ok := m.files[key]
	if !ok {
		return nil, driven.ErrNotFound
	}
	return content, nil
}

func (m *mockGitHubClient) FetchPullRequest(_ context.Context, _ string, _ int) (*model.InboundEvent, error) {
	return nil, driven.ErrNotFound
}

func (m *mockGitHubClient) ListIssueComments(_ context.Context, _ model.IssueRef) ([]model.ReviewComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.ReviewComment, len(m.comments))
	copy(out, m.comments)
	return out, nil
}

func (m *mockGitHubClient) CreateIssueComment(_ context.Context, issue model.IssueRef, body string) (*model.ReviewComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.nextID++
	c := model.ReviewComment{ID: m.nextID, Issue: issue, Author: "iconbot", Body: body, HTMLURL: "https://github.com/c"}
	m.comments = append(m.comments, c)
	return &c, nil
}

func (m *mockGitHubClient) EditIssueComment(_ context.Context, _ model.IssueRef, commentID int64, body string) (*model.ReviewComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editCalls = append(m.editCalls, commentID)
	for i := range m.comments {
		if m.comments[i].ID == commentID {
			m.comments[i].Body = body
			c := m.comments[i]
			return &c, nil
		}
	}
	return nil, driven.ErrNotFound
}

func (m *mockGitHubClient) fetchedPaths() []fileKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fileKey(nil), m.fileCalls...)
}

type compareCall struct {
	before []byte
	after  []byte
}

type mockComparer struct {
	mu      sync.Mutex
	compare func(before, after []byte) ([]model.SubImageDiff, error)
	calls   []compareCall
}

func (m *mockComparer) Compare(_ context.Context, before, after []byte) ([]model.SubImageDiff, error) {
	m.mu.Lock()
	m.calls = append(m.calls, compareCall{before: before, after: after})
	m.mu.Unlock()
	return m.compare(before, after)
}

type mockUploadStore struct {
	mu   sync.Mutex
	urls map[string]string
	sets int
}

func newMockUploadStore() *mockUploadStore {
	return &mockUploadStore{urls: make(map[string]string)}
}

func (m *mockUploadStore) Get(_ context.Context, hash string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url, ok := m.urls[hash]
	return url, ok, nil
}

func (m *mockUploadStore) Set(_ context.Context, hash, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.urls[hash] = url
	return nil
}

func (m *mockUploadStore) List(_ context.Context) ([]model.UploadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.UploadRecord
	for h, u := range m.urls {
		out = append(out, model.UploadRecord{Hash: h, URL: u})
	}
	return out, nil
}

type mockImageHost struct {
	mu      sync.Mutex
	uploads []string
	err     error
}

func (m *mockImageHost) Upload(_ context.Context, filename string, _ []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.uploads = append(m.uploads, filename)
	return "https://img.example.com/" + filename, nil
}

func (m *mockImageHost) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

type publishCall struct {
	ev   model.InboundEvent
	body string
}

type mockSink struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (m *mockSink) Publish(_ context.Context, ev model.InboundEvent, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, publishCall{ev: ev, body: body})
	return m.err
}

type fragmentCall struct {
	number int
	path   string
	body   string
}

type mockFragments struct {
	mu    sync.Mutex
	calls []fragmentCall
}

func (m *mockFragments) WriteFragment(number int, spritePath, fragment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fragmentCall{number: number, path: spritePath, body: fragment})
	return nil
}

const (
	baseRepo = "https://github.com/tgstation/tgstation"
	headRepo = "https://github.com/contributor/tgstation"
)

func testEvent() model.InboundEvent {
	return model.InboundEvent{
		Action:   model.ActionOpened,
		Number:   42,
		Author:   "Contributor",
		IssueURL: "https://api.github.com/repos/tgstation/tgstation/issues/42",
		DiffURL:  "https://github.com/tgstation/tgstation/pull/42.diff",
		Base:     model.RepoRef{HTMLURL: baseRepo, Ref: "master", FullName: "tgstation/tgstation"},
		Head:     model.RepoRef{HTMLURL: headRepo, Ref: "feature"},
	}
}

func baseFile(path string) fileKey { return fileKey{repo: baseRepo, ref: "master", path: path} }
func headFile(path string) fileKey { return fileKey{repo: headRepo, ref: "feature", path: path} }
