// Package reducer implements the reducer composition algebra.
//
// A Reducer is a pure transition function: it mutates state in place for
// one action and returns an effect describing follow-up work. Small reducers
// are written against a local state, action and environment, then lifted
// into the application domain:
//
//   - Combine runs several reducers over the same state, in order
//   - Pullback lifts through a Lens (state) and a Prism (action)
//   - Optional lifts over state that may be absent
//   - ForEachIndexed and ForEachKeyed lift an element reducer over a
//     slice or a map
//
// Lifted reducers ignore every action their prism does not match. This is
// how a combined application reducer routes actions without any component
// knowing about the others.
//
// Lenses and prisms are explicit function pairs. Nothing here inspects
// values by reflection.
package reducer
