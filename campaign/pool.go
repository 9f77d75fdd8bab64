// Package campaign schedules credential sessions over the domain list and
// drives each domain through the automation layer.
package campaign

import (
	"strings"

	"github.com/use-agent/stackscout/models"
)

// CredentialPool yields credentials in input order, each at most once.
type CredentialPool struct {
	creds []models.Credential
	next  int
}

// NewCredentialPool copies creds into a new pool.
func NewCredentialPool(creds []models.Credential) *CredentialPool {
	c := make([]models.Credential, len(creds))
	copy(c, creds)
	return &CredentialPool{creds: c}
}

// Next returns the next credential, or false once the pool is exhausted.
func (p *CredentialPool) Next() (models.Credential, bool) {
	if p.next >= len(p.creds) {
		return models.Credential{}, false
	}
	c := p.creds[p.next]
	p.next++
	return c, true
}

// Remaining returns how many credentials have not been handed out.
func (p *CredentialPool) Remaining() int {
	return len(p.creds) - p.next
}

// Len returns the pool size.
func (p *CredentialPool) Len() int {
	return len(p.creds)
}

// DomainQueue is the ordered domain list with a take cursor.
type DomainQueue struct {
	tasks  []models.DomainTask
	cursor int
}

// NewDomainQueue builds a queue from domains, trimming each and skipping
// blanks. Order is preserved; Index is the position within the queue.
func NewDomainQueue(domains []string) *DomainQueue {
	tasks := make([]models.DomainTask, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		tasks = append(tasks, models.DomainTask{Domain: d, Index: len(tasks)})
	}
	return &DomainQueue{tasks: tasks}
}

// Take returns up to n tasks from the cursor and advances the cursor by the
// number returned, along with how many tasks remain after the batch.
func (q *DomainQueue) Take(n int) ([]models.DomainTask, int) {
	if n < 0 {
		n = 0
	}
	end := q.cursor + n
	if end > len(q.tasks) {
		end = len(q.tasks)
	}
	batch := make([]models.DomainTask, end-q.cursor)
	copy(batch, q.tasks[q.cursor:end])
	q.cursor = end
	return batch, len(q.tasks) - q.cursor
}

// IsExhausted reports whether every task has been taken.
func (q *DomainQueue) IsExhausted() bool {
	return q.cursor >= len(q.tasks)
}

// Remaining returns how many tasks have not been taken.
func (q *DomainQueue) Remaining() int {
	return len(q.tasks) - q.cursor
}

// Len returns the total number of tasks.
func (q *DomainQueue) Len() int {
	return len(q.tasks)
}

// From returns the tasks at and after index i, regardless of the cursor.
func (q *DomainQueue) From(i int) []models.DomainTask {
	if i < 0 {
		i = 0
	}
	if i >= len(q.tasks) {
		return nil
	}
	out := make([]models.DomainTask, len(q.tasks)-i)
	copy(out, q.tasks[i:])
	return out
}
