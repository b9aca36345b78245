// Package needle generates invokers: reusable call paths that invoke a
// method of a container-managed bean through a configurable pipeline of
// lookups and transformers.
//
// # Quick Start
//
// Describe the classes involved in a type index, register beans and build
// an invoker:
//
//	index := types.NewIndex()
//	_ = index.Add(serviceClass, databaseClass, formatClass)
//
//	c := needle.New(needle.WithIndex(index))
//	_ = needle.ProvideValue(c, types.Class("app.UserService"), &UserService{})
//
//	inv, err := c.CreateInvoker("app.UserService", "GetUser").
//	    WithInstanceLookup().
//	    WithReturnValueTransformer("app.Format", "Title").
//	    Build()
//
//	user, err := needle.Call[string](ctx, inv, nil, 42)
//
// # Type Index
//
// Classes and methods are described by [types.ClassInfo] and
// [types.MethodInfo]. Each method carries its parameter and return types
// and a [types.Func] implementing it. Classes without a superclass extend
// the root class "any". The builtin classes error, needle.NoValue,
// needle.Invoker and needle.Cleanup are always indexed.
//
// # Builders
//
// CreateInvoker starts an [InvokerBuilder] for a method declared by or
// inherited into a bean class. Each setter may be used once; misuse is
// recorded and reported by Build:
//
//	WithInstanceLookup()                       // target instance from the container
//	WithArgumentLookup(pos)                    // argument from the container
//	WithInstanceTransformer(class, method)     // adapt the instance
//	WithArgumentTransformer(pos, class, method)
//	WithReturnValueTransformer(class, method)
//	WithReturnValueTransformerType(class)      // stateful, see Transformer
//	WithExceptionTransformer(class, method)    // turn an error into a result
//	WithInvocationWrapper(class, method)       // wrap the whole call
//
// Transformers are looked up by name on their class. Exactly one candidate
// must fit the expected type, otherwise Build fails with
// ErrCodeTransformerResolution listing what was considered.
//
// # Identity and Caching
//
// Build freezes the configuration into an [InvokerInfo] whose identity is
// a hash of the target and every setting. Invokers are cached by identity,
// so building the same configuration twice returns the same invoker. The
// canonical name is
//
//	<declaring class>_<method>_Invoker_<identity>
//
// or, with a wrapper, <declaring class>_<method>_InvokerWrapper_<identity>.
// Container.Invoker finds a built invoker by that name.
//
// # Evaluation Order
//
// A call looks up and transforms the instance, then each argument in
// order, calls the target and transforms its result or error. Release
// actions run last: cleanups registered by transformers first, then the
// handles of dependent beans obtained by lookups.
//
// # Lookups and Scopes
//
// Beans are resolved by type and qualifiers when the invoker is built, and
// instantiated on every call. Singleton beans are shared, Dependent beans
// are created per lookup and destroyed after the call, Request beans are
// shared within a context made by WithRequestScope.
//
//	needle.Provide(c, types.Class("app.Database"), newDatabase,
//	    needle.WithScope(needle.Dependent),
//	    needle.WithDestroy(func(db *Database) error { return db.Close() }),
//	)
//
// # Errors
//
// Errors carry an [ErrorCode]. Configuration and resolution problems are
// reported by Build; errors of the target method reach the caller
// unchanged unless an exception transformer handles them.
//
//	if needle.IsResolutionError(err) { ... }
//	if needle.IsUnsatisfied(err) { ... }
//
// # Observers
//
// WithResolveObserver, WithInvokeObserver and WithGenerateObserver report
// bean lookups, invocations and invoker generation.
//
// # Debug Visualization
//
// PrintGraph lists beans and generated invokers with their lookups;
// PrintGraphDOT renders the same as Graphviz DOT.
package needle
