package service

import "context"

type testTxRepos struct {
	knowledge KnowledgeRepositoryInterface
}

func (t *testTxRepos) Knowledge() KnowledgeRepositoryInterface {
	return t.knowledge
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
