/*
 * AXP-CORE - Event scheduler.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package schedule is a relative-time callback queue used to drive
// device timers (UART baud clocks, disk completion, NIC interrupt
// coalescing) off the same cycle counter that advances instruction
// execution. One Scheduler is owned per internal/smp.Manager; cores never
// hold their own.
package schedule

// Callback runs when a scheduled event's time arrives.
type Callback func(arg int)

type event struct {
	time int
	cb   Callback
	arg  int
	id   uint64
	prev *event
	next *event
}

// Handle identifies a pending event for cancellation.
type Handle uint64

// Scheduler is a doubly-linked list of events ordered by relative time
// to the next tick, so advancing time by t cycles is O(events that
// fire), not O(all pending events).
type Scheduler struct {
	head, tail *event
	nextID     uint64
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Add schedules cb to run after the given number of cycles. A zero
// delay runs the callback immediately, synchronously. The returned
// handle can be passed to Cancel.
func (s *Scheduler) Add(cb Callback, cycles int, arg int) Handle {
	if cycles <= 0 {
		cb(arg)
		return 0
	}

	s.nextID++
	ev := &event{cb: cb, time: cycles, arg: arg, id: s.nextID}

	cur := s.head
	if cur == nil {
		s.head = ev
		s.tail = ev
		return Handle(ev.id)
	}

	for cur != nil {
		if ev.time <= cur.time {
			cur.time -= ev.time
			ev.prev = cur.prev
			ev.next = cur
			cur.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				s.head = ev
			}
			return Handle(ev.id)
		}
		ev.time -= cur.time
		cur = cur.next
	}

	ev.prev = s.tail
	s.tail.next = ev
	s.tail = ev
	return Handle(ev.id)
}

// Cancel removes a pending event by the handle Add returned, if it has
// not already fired.
func (s *Scheduler) Cancel(h Handle) {
	for cur := s.head; cur != nil; cur = cur.next {
		if cur.id == uint64(h) {
			if cur.next != nil {
				cur.next.time += cur.time
				cur.next.prev = cur.prev
			} else {
				s.tail = cur.prev
			}
			if cur.prev != nil {
				cur.prev.next = cur.next
			} else {
				s.head = cur.next
			}
			return
		}
	}
}

// Pending reports whether any event is scheduled.
func (s *Scheduler) Pending() bool {
	return s.head != nil
}

// Advance moves time forward by t cycles, firing every event whose
// relative deadline has elapsed.
func (s *Scheduler) Advance(t int) {
	cur := s.head
	if cur == nil {
		return
	}
	cur.time -= t
	for cur != nil && cur.time <= 0 {
		cb, arg := cur.cb, cur.arg
		s.head = cur.next
		if s.head != nil {
			s.head.prev = nil
		} else {
			s.tail = nil
		}
		cb(arg)
		cur = s.head
	}
}
