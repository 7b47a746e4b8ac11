package worker

import (
	"fmt"
	"sync"
)

// FetchPool limita quantas buscas externas rodam ao mesmo tempo.
// Tarefa submetida com vaga livre começa na hora; o resto espera numa
// fila FIFO e entra conforme as vagas abrem. Uma tarefa que falha só
// afeta o Future dela — a fila continua drenando.
//
// O mesmo pool é compartilhado entre o fan-out de páginas e o de
// formulários, então o limite vale pro conjunto todo.
type FetchPool struct {
	mu      sync.Mutex
	limit   int
	running int
	pending []*Future
}

// Future: resultado pendente de uma tarefa submetida ao pool.
type Future struct {
	fn   func() error
	done chan struct{}
	err  error
}

func NewFetchPool(limit int) *FetchPool {
	if limit <= 0 {
		limit = 5
	}
	return &FetchPool{limit: limit}
}

func (p *FetchPool) Submit(fn func() error) *Future {
	f := &Future{fn: fn, done: make(chan struct{})}

	p.mu.Lock()
	if p.running < p.limit {
		p.running++
		p.mu.Unlock()
		go p.run(f)
		return f
	}
	p.pending = append(p.pending, f)
	p.mu.Unlock()
	return f
}

// run executa a tarefa e em seguida puxa a próxima da fila na mesma
// goroutine, mantendo o número de goroutines ativas igual ao limite.
func (p *FetchPool) run(f *Future) {
	for f != nil {
		f.err = safeCall(f.fn)
		close(f.done)
		f = p.next()
	}
}

func (p *FetchPool) next() *Future {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		p.running--
		return nil
	}
	f := p.pending[0]
	p.pending = p.pending[1:]
	return f
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic na tarefa: %v", r)
		}
	}()
	return fn()
}

// Wait bloqueia até a tarefa terminar e devolve o erro dela (nil em sucesso).
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

// FutureGroup junta futures criados por tarefas concorrentes para o
// orquestrador esperar tudo no final (nada de esperar future de dentro
// de outra tarefa do pool — isso travaria as vagas).
type FutureGroup struct {
	mu      sync.Mutex
	futures []*Future
}

func NewFutureGroup() *FutureGroup {
	return &FutureGroup{}
}

func (g *FutureGroup) Add(f *Future) {
	g.mu.Lock()
	g.futures = append(g.futures, f)
	g.mu.Unlock()
}

// WaitAll espera todos os futures já adicionados e devolve os erros
// encontrados, na ordem de submissão.
func (g *FutureGroup) WaitAll() []error {
	g.mu.Lock()
	futures := append([]*Future(nil), g.futures...)
	g.mu.Unlock()

	var errs []error
	for _, f := range futures {
		if err := f.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
