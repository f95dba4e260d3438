package graphmaster

// NewValues creates an empty Values.
func NewValues() *Values {
	return &Values{stacks: make(map[string][]string)}
}

// Set replaces the current value of name, or pushes it if name has none.
func (v *Values) Set(name, value string) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	stack := v.stacks[name]
	if len(stack) == 0 {
		v.stacks[name] = []string{value}
		return
	}
	stack[len(stack)-1] = value
}

// Push shadows the current value of name until the matching Pop.
func (v *Values) Push(name, value string) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	v.stacks[name] = append(v.stacks[name], value)
}

// Pop removes the current value of name and returns it.
func (v *Values) Pop(name string) (string, bool) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	stack := v.stacks[name]
	if len(stack) == 0 {
		return "", false
	}
	top := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(v.stacks, name)
	} else {
		v.stacks[name] = stack[:len(stack)-1]
	}
	return top, true
}

// Depth returns how many values are stacked for name.
func (v *Values) Depth(name string) int {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return len(v.stacks[name])
}

// ContextValue returns the current value of name.
func (v *Values) ContextValue(name string) (string, bool) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	stack := v.stacks[name]
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1], true
}
